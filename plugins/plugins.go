// Package plugins provides ready-made observers for bound.Binding.
//
// Plugins run synchronously on every get and set of the binding they are
// attached to, after the binding has propagated the value.
package plugins

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/ygrebnov/bound"
)

// Log writes one debug event per action with the binding path, the action
// type, the value and the number of subscribers.
func Log[T any](l zerolog.Logger) bound.Plugin[T] {
	return func(value T, a bound.Action) {
		l.Debug().
			Str("path", a.Path).
			Str("action", string(a.Type)).
			Interface("value", value).
			Int("subscribers", len(a.Subscribers)).
			Msg("binding action")
	}
}

// OnSet calls fn with the new value after every set.
func OnSet[T any](fn func(path string, value T)) bound.Plugin[T] {
	return func(value T, a bound.Action) {
		if a.Type == bound.ActionSet {
			fn(a.Path, value)
		}
	}
}

// NewCounterVec returns a counter vector with "path" and "action" labels
// suitable for Counter. The caller registers it.
func NewCounterVec(namespace string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "binding",
			Name:      "actions_total",
			Help:      "Binding get and set actions.",
		},
		[]string{"path", "action"},
	)
}

// Counter increments vec for every action, labelled by binding path and
// action type.
func Counter[T any](vec *prometheus.CounterVec) bound.Plugin[T] {
	return func(_ T, a bound.Action) {
		vec.WithLabelValues(a.Path, string(a.Type)).Inc()
	}
}
