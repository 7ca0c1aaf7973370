package bound

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/bound/errors"
)

// Binding is the single source of truth for one value. Writes through Set
// (or through any master subscriber's property) are pushed synchronously to
// every slave subscriber.
//
// A Binding is safe for concurrent use; its value and subscriber list are
// guarded by one mutex and every write visits all subscribers under it.
type Binding[T any] struct {
	mu          sync.Mutex
	value       T
	subscribers []Subscriber
	twoWay      bool
	plugins     []Plugin[T]
	path        string
	cfg         Config
}

// BindingOption configures a Binding at construction time.
type BindingOption[T any] func(*Binding[T])

// WithBindingPlugins attaches plugins observing every Get and Set.
func WithBindingPlugins[T any](plugins ...Plugin[T]) BindingOption[T] {
	return func(b *Binding[T]) {
		b.plugins = append(b.plugins, plugins...)
	}
}

// WithPath names the binding; the path is reported to plugins, logs and errors.
func WithPath[T any](path string) BindingOption[T] {
	return func(b *Binding[T]) { b.path = path }
}

// WithBindingConfig injects the strict-mode flag and logger.
func WithBindingConfig[T any](cfg Config) BindingOption[T] {
	return func(b *Binding[T]) { b.cfg = cfg }
}

// NewBinding creates a Binding holding initial. When twoWay is true every
// subscriber added without an explicit role becomes a master.
func NewBinding[T any](twoWay bool, initial T, opts ...BindingOption[T]) *Binding[T] {
	b := &Binding[T]{
		value:  initial,
		twoWay: twoWay,
		cfg:    DefaultConfig(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// TwoWay reports the mode the binding was created with.
func (b *Binding[T]) TwoWay() bool { return b.twoWay }

// Path returns the name given with WithPath.
func (b *Binding[T]) Path() string { return b.path }

// Get returns the current value after running plugins with ActionGet.
func (b *Binding[T]) Get() T {
	b.mu.Lock()
	v := b.value
	subs := b.pluginSubscribersLocked()
	b.mu.Unlock()

	b.callPlugins(ActionGet, v, subs)
	return v
}

// Set stores v, pushes it to every non-master subscriber and then runs
// plugins with ActionSet.
func (b *Binding[T]) Set(v T) {
	b.mu.Lock()
	b.value = v
	b.notifyLocked(v)
	subs := b.pluginSubscribersLocked()
	b.mu.Unlock()

	b.callPlugins(ActionSet, v, subs)
}

// Notify pushes v to every non-master subscriber without changing the
// binding's value. Masters read the binding through their cell and are skipped.
func (b *Binding[T]) Notify(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notifyLocked(v)
}

func (b *Binding[T]) notifyLocked(v T) {
	for _, s := range b.subscribers {
		if s.Role != RoleMaster {
			s.Owner.Store(s.Key, v)
		}
	}
}

func (b *Binding[T]) pluginSubscribersLocked() []Subscriber {
	if len(b.plugins) == 0 {
		return nil
	}
	return slices.Clone(b.subscribers)
}

func (b *Binding[T]) callPlugins(typ ActionType, v T, subs []Subscriber) {
	if len(b.plugins) == 0 {
		return
	}
	action := Action{Type: typ, Path: b.path, Subscribers: subs}
	for _, p := range b.plugins {
		p(v, action)
	}
}

// AddMasterSubscriber is AddSubscriber with RoleMaster.
func (b *Binding[T]) AddMasterSubscriber(owner Owner, key string) error {
	return b.AddSubscriber(owner, key, RoleMaster)
}

// AddSlaveSubscriber is AddSubscriber with RoleSlave. On a two-way binding
// the subscriber still becomes a master.
func (b *Binding[T]) AddSlaveSubscriber(owner Owner, key string) error {
	return b.AddSubscriber(owner, key, RoleSlave)
}

// AddSubscriber registers owner[key] with the binding.
//
// Masters (two-way bindings or RoleMaster): a defined value already held by
// the owner is adopted through Set, otherwise the binding's value is pushed
// to the owner; the property is then replaced with a live cell.
//
// Slaves: the binding's value is stored as a plain property. A property that
// is already live (a master of another binding) cannot become a slave and
// fails with ErrLiveProperty when the owner reports it through IsLive.
//
// Adding the same (owner, key) twice is a no-op, or ErrDuplicateSubscription
// when the binding's config is strict.
func (b *Binding[T]) AddSubscriber(owner Owner, key string, role Role) error {
	if isNilOwner(owner) {
		return errorc.With(errors.ErrNilObject, errorc.String(errors.ErrorFieldSubscriberKey, key))
	}
	if b.twoWay || role == RoleMaster {
		return b.addMaster(owner, key)
	}
	return b.addSlave(owner, key)
}

func (b *Binding[T]) addMaster(owner Owner, key string) error {
	if b.declared(owner, key) {
		return b.duplicate(key, RoleMaster)
	}

	if current, ok := owner.Lookup(key); ok && current != nil {
		v, err := convert[T](current)
		if err != nil {
			return errorc.With(err, errorc.String(errors.ErrorFieldSubscriberKey, key))
		}
		b.Set(v)
	} else {
		owner.Store(key, b.Get())
	}

	if !b.register(Subscriber{Owner: owner, Key: key, Role: RoleMaster}) {
		return nil
	}
	owner.Attach(key, cell[T]{b: b})
	return nil
}

// liveOwner is implemented by owners that can tell whether a property is
// backed by a cell.
type liveOwner interface {
	IsLive(key string) bool
}

func (b *Binding[T]) addSlave(owner Owner, key string) error {
	if b.declared(owner, key) {
		return b.duplicate(key, RoleSlave)
	}
	// pushes go through Store and would be hidden behind another binding's cell
	if lo, ok := owner.(liveOwner); ok && lo.IsLive(key) {
		return errorc.With(
			errors.ErrLiveProperty,
			errorc.String(errors.ErrorFieldSubscriberKey, key),
			errorc.String(errors.ErrorFieldPath, b.path),
		)
	}
	owner.Store(key, b.Get())
	b.register(Subscriber{Owner: owner, Key: key, Role: RoleSlave})
	return nil
}

func (b *Binding[T]) declared(owner Owner, key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.indexLocked(owner, key) >= 0
}

// register appends s unless a concurrent add got there first.
func (b *Binding[T]) register(s Subscriber) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.indexLocked(s.Owner, s.Key) >= 0 {
		return false
	}
	b.subscribers = append(b.subscribers, s)
	return true
}

func (b *Binding[T]) duplicate(key string, role Role) error {
	if b.cfg.strict() {
		return errorc.With(
			errors.ErrDuplicateSubscription,
			errorc.String(errors.ErrorFieldSubscriberKey, key),
			errorc.String(errors.ErrorFieldSubscriberRole, string(role)),
			errorc.String(errors.ErrorFieldPath, b.path),
		)
	}
	b.cfg.Logger.Debug().
		Str("path", b.path).
		Str("key", key).
		Msg("binding is already declared")
	return nil
}

func (b *Binding[T]) indexLocked(owner Owner, key string) int {
	return slices.IndexFunc(b.subscribers, func(s Subscriber) bool { return s.is(owner, key) })
}

// RemoveSubscriber unregisters owner[key]. A master's cell is replaced with a
// plain property holding the binding's last value. It reports whether a
// subscriber was removed; unknown subscribers are ignored.
func (b *Binding[T]) RemoveSubscriber(owner Owner, key string) bool {
	b.mu.Lock()
	s, v, ok := b.takeLocked(b.indexLocked(owner, key))
	b.mu.Unlock()
	if ok {
		detach(s, v)
	}
	return ok
}

// RemoveSubscriberAt unregisters the subscriber at index. Out of range
// indexes are ignored.
func (b *Binding[T]) RemoveSubscriberAt(index int) bool {
	b.mu.Lock()
	s, v, ok := b.takeLocked(index)
	b.mu.Unlock()
	if ok {
		detach(s, v)
	}
	return ok
}

func (b *Binding[T]) takeLocked(i int) (Subscriber, T, bool) {
	if i < 0 || i >= len(b.subscribers) {
		var zero T
		return Subscriber{}, zero, false
	}
	s := b.subscribers[i]
	b.subscribers = slices.Delete(b.subscribers, i, i+1)
	return s, b.value, true
}

// ClearSubscribers unregisters every subscriber, restoring masters to plain
// properties.
func (b *Binding[T]) ClearSubscribers() {
	b.mu.Lock()
	subs := b.subscribers
	v := b.value
	b.subscribers = nil
	b.mu.Unlock()

	for _, s := range subs {
		detach(s, v)
	}
}

func detach[T any](s Subscriber, v T) {
	if s.Role == RoleMaster {
		s.Owner.Detach(s.Key, v)
	}
}

// Subscribers returns a copy of the subscriber list in insertion order.
func (b *Binding[T]) Subscribers() []Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.subscribers)
}

// Len returns the number of subscribers.
func (b *Binding[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// cell exposes a Binding to an Owner as a live property.
type cell[T any] struct {
	b *Binding[T]
}

func (c cell[T]) Get() any { return c.b.Get() }

func (c cell[T]) Set(v any) error {
	tv, err := convert[T](v)
	if err != nil {
		return errorc.With(err, errorc.String(errors.ErrorFieldPath, c.b.path))
	}
	c.b.Set(tv)
	return nil
}

// convert asserts v to T. nil converts to the zero value of T.
func convert[T any](v any) (T, error) {
	if tv, ok := v.(T); ok {
		return tv, nil
	}
	var zero T
	if v == nil {
		return zero, nil
	}
	return zero, errorc.With(
		errors.ErrTypeMismatch,
		errorc.String(errors.ErrorFieldValueType, fmt.Sprintf("%T", v)),
		errorc.String(errors.ErrorFieldBindingType, reflect.TypeOf((*T)(nil)).Elem().String()),
	)
}

func isNilOwner(owner Owner) bool {
	if owner == nil {
		return true
	}
	v := reflect.ValueOf(owner)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Interface, reflect.Func, reflect.Slice, reflect.Chan:
		return v.IsNil()
	}
	return false
}
