package bound

import "github.com/rs/zerolog"

// Strategy selects how a Bound wires properties.
type Strategy int

const (
	// StrategyCell wires master properties as live cells on *Object owners.
	StrategyCell Strategy = iota
	// StrategyProxy is reserved for an interception-based strategy and is not implemented.
	StrategyProxy
)

func (s Strategy) String() string {
	switch s {
	case StrategyCell:
		return "cell"
	case StrategyProxy:
		return "proxy"
	}
	return "unknown"
}

// PluginMap assigns plugins to leaves by dotted path (e.g. "inside.another").
type PluginMap map[string][]Plugin[any]

type options struct {
	cfg       Config
	plugins   []Plugin[any]
	pluginMap PluginMap
	strategy  Strategy
}

// Option configures a Bound at construction time.
type Option func(*options)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithDebug toggles strict mode.
func WithDebug(debug bool) Option {
	return func(o *options) { o.cfg.Debug = debug }
}

// WithLogger sets the logger used by the Bound and its Bindings.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.cfg.Logger = l }
}

// WithPlugins attaches plugins to every leaf binding.
func WithPlugins(plugins ...Plugin[any]) Option {
	return func(o *options) { o.plugins = append(o.plugins, plugins...) }
}

// WithPluginMap attaches plugins to the leaves named by the map keys.
func WithPluginMap(m PluginMap) Option {
	return func(o *options) {
		if o.pluginMap == nil {
			o.pluginMap = make(PluginMap, len(m))
		}
		for path, plugins := range m {
			o.pluginMap[path] = append(o.pluginMap[path], plugins...)
		}
	}
}

// WithStrategy selects the wiring strategy. Only StrategyCell is implemented.
func WithStrategy(s Strategy) Option {
	return func(o *options) { o.strategy = s }
}

func (o *options) pluginsFor(path string) []Plugin[any] {
	specific := o.pluginMap[path]
	if len(o.plugins) == 0 {
		return specific
	}
	out := make([]Plugin[any], 0, len(o.plugins)+len(specific))
	out = append(out, o.plugins...)
	return append(out, specific...)
}

type bindOptions struct {
	twoWay bool
	path   string
}

// BindOption configures a single Bind call.
type BindOption func(*bindOptions)

// OneWay binds the object's properties as slaves: they receive updates but
// writes to them do not propagate.
func OneWay() BindOption {
	return func(o *bindOptions) { o.twoWay = false }
}

// WithTwoWay sets the bind mode explicitly. Two-way is the default.
func WithTwoWay(twoWay bool) BindOption {
	return func(o *bindOptions) { o.twoWay = twoWay }
}

// AtPath matches the object against the storage sub-tree at a dotted path
// instead of the root.
func AtPath(path string) BindOption {
	return func(o *bindOptions) { o.path = path }
}
