package host

// options.go handles setting of host options

// Options are closures with the signature func(*Host), as returned by the option functions below
// (NoConcurrency, etc).  They are passed as the last (variadic) parameter of New, for example:
//
//   host.New(sdl, host.NoConcurrency(true), host.InitialTimeout(time.Second))
//
// SetOptions runs the closures and fills in defaults for anything that was not set.
// If the same option function is used more than once only the last use has any effect.

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrewwphillips/imagecdn/internal/logging"
)

const (
	defaultInitialTimeout = 10 * time.Second // how long to wait for connection_init after the WS is opened
)

// SetOptions takes a slice of host options (closures) and executes them
func (h *Host) SetOptions(options ...func(*Host)) {
	for _, option := range options {
		option(h)
	}

	// Set any options that still have their unset (zero) value
	if h.initialTimeout == 0 {
		h.initialTimeout = defaultInitialTimeout
	}
	if h.logger == nil {
		h.logger = logging.L()
	}
}

// NoIntrospection turns off introspection (the __typename field)
func NoIntrospection(on bool) func(*Host) {
	return func(h *Host) {
		h.noIntrospection = on
	}
}

// NoConcurrency turns off concurrent resolution of the fields of a query
func NoConcurrency(on bool) func(*Host) {
	return func(h *Host) {
		h.noConcurrency = on
	}
}

// InitialTimeout sets the length time to wait from when the websocket is opened until the
// "connection_init" message is received. If the message is not received from the client
// within the time limit then the WS is closed.
func InitialTimeout(timeout time.Duration) func(*Host) {
	return func(h *Host) {
		h.initialTimeout = timeout
	}
}

// Logger sets the logger (the default is the process-wide logger)
func Logger(l *slog.Logger) func(*Host) {
	return func(h *Host) {
		h.logger = l
	}
}

// Metrics registers the query metrics with a Prometheus registerer
func Metrics(reg prometheus.Registerer) func(*Host) {
	return func(h *Host) {
		h.metrics = newMetrics(reg)
	}
}
