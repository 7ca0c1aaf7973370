package bound

import "github.com/rs/zerolog"

// Config is the context shared by a Bound and all of its Bindings.
//
// Debug switches on strict mode: invalid subjects, rebinding and duplicate
// subscriptions become errors instead of being tolerated.
type Config struct {
	Debug  bool
	Logger zerolog.Logger
}

// DefaultConfig returns a non-strict configuration with a no-op logger.
func DefaultConfig() Config {
	return Config{Logger: zerolog.Nop()}
}

func (c Config) strict() bool { return c.Debug }
