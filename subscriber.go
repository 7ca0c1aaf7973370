package bound

// Role tells a Binding how a subscriber takes part in propagation.
type Role string

const (
	// RoleDefault lets the binding decide: master when it is two-way, slave otherwise.
	RoleDefault Role = ""
	// RoleMaster wires the property as a live cell; writes to it update the binding.
	RoleMaster Role = "master"
	// RoleSlave keeps the property plain; it receives pushed updates only.
	RoleSlave Role = "slave"
)

// Subscriber is a registered (Owner, Key, Role) triple. It does not own the
// referenced object.
type Subscriber struct {
	Owner Owner
	Key   string
	Role  Role
}

func (s Subscriber) is(owner Owner, key string) bool {
	return s.Key == key && s.Owner == owner
}

// ActionType distinguishes reads from writes in plugin callbacks.
type ActionType string

const (
	// ActionGet is reported for every Binding.Get, including reads through a master's cell.
	ActionGet ActionType = "get"
	// ActionSet is reported after a Set has reached every subscriber.
	ActionSet ActionType = "set"
)

// Action describes the binding event a plugin observes. Subscribers is a copy
// taken after propagation; mutating it has no effect on the binding.
type Action struct {
	Type        ActionType
	Path        string
	Subscribers []Subscriber
}

// Plugin observes every Get and Set of a Binding. Plugins run synchronously
// after the binding lock is released, so they may read the binding.
type Plugin[T any] func(value T, action Action)
