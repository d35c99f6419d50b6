// Package metrics counts the stack and secret operations of one kmecs
// invocation and writes them in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/stack"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
	ResultAbsent  = "absent"
	ResultReused  = "reused"
)

// Recorder holds a private registry. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry
	zone     string

	stackOpsTotal   *prometheus.CounterVec
	stackOpDuration *prometheus.HistogramVec
	secretOpsTotal  *prometheus.CounterVec
	runTimestamp    *prometheus.GaugeVec
	runSuccess      *prometheus.GaugeVec

	mu      sync.Mutex
	started map[stack.Role]time.Time
}

// New creates a Recorder for one zone.
func New(zone string) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		zone:     zone,
		started:  map[stack.Role]time.Time{},
		stackOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kmecs",
				Subsystem: "stack",
				Name:      "operations_total",
				Help:      "Stack operations by operation, role and result",
			},
			[]string{"zone", "operation", "role", "result"},
		),
		stackOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "kmecs",
				Subsystem: "stack",
				Name:      "operation_duration_seconds",
				Help:      "Time from submitting a stack operation to its terminal state",
				Buckets:   prometheus.ExponentialBuckets(15, 2, 8), // 15s to ~32min
			},
			[]string{"zone", "operation", "role"},
		),
		secretOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kmecs",
				Subsystem: "secret",
				Name:      "operations_total",
				Help:      "Secret operations by operation, purpose and result",
			},
			[]string{"zone", "operation", "purpose", "result"},
		),
		runTimestamp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "kmecs",
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last run of a command finished",
			},
			[]string{"zone", "command"},
		),
		runSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "kmecs",
				Name:      "last_run_success",
				Help:      "Whether the last run of a command succeeded (1) or not (0)",
			},
			[]string{"zone", "command"},
		),
	}
	r.registry.MustRegister(
		r.stackOpsTotal,
		r.stackOpDuration,
		r.secretOpsTotal,
		r.runTimestamp,
		r.runSuccess,
	)
	return r
}

// Registry exposes the registry for tests and custom exporters.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveTransition turns stack state changes into operation samples.
// It is meant to be registered with stack.Run.Watch.
func (r *Recorder) ObserveTransition(t stack.Transition) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	role := string(t.Role)
	switch {
	case t.To == stack.Applying || t.To == stack.Deleting:
		r.started[t.Role] = t.At
	case t.From == stack.Applying:
		r.finish("apply", t, resultFor(t.To == stack.Applied))
	case t.From == stack.Deleting:
		r.finish("delete", t, resultFor(t.To == stack.Deleted))
	case t.From == stack.NotApplied && t.To == stack.Deleted:
		r.stackOpsTotal.WithLabelValues(r.zone, "delete", role, ResultAbsent).Inc()
	case t.From == stack.NotApplied && t.To == stack.Failed:
		r.stackOpsTotal.WithLabelValues(r.zone, "apply", role, ResultFailed).Inc()
	}
}

func (r *Recorder) finish(op string, t stack.Transition, result string) {
	role := string(t.Role)
	r.stackOpsTotal.WithLabelValues(r.zone, op, role, result).Inc()
	if start, ok := r.started[t.Role]; ok {
		r.stackOpDuration.WithLabelValues(r.zone, op, role).Observe(t.At.Sub(start).Seconds())
		delete(r.started, t.Role)
	}
}

// SecretOp counts one secret operation.
func (r *Recorder) SecretOp(op, purpose, result string) {
	if r == nil {
		return
	}
	r.secretOpsTotal.WithLabelValues(r.zone, op, purpose, result).Inc()
}

// RunFinished records the outcome of a command.
func (r *Recorder) RunFinished(command string, ok bool, at time.Time) {
	if r == nil {
		return
	}
	r.runTimestamp.WithLabelValues(r.zone, command).Set(float64(at.Unix()))
	success := 0.0
	if ok {
		success = 1
	}
	r.runSuccess.WithLabelValues(r.zone, command).Set(success)
}

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

func resultFor(ok bool) string {
	if ok {
		return ResultSuccess
	}
	return ResultFailed
}
