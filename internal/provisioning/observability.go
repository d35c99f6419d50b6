package provisioning

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"
)

// Observer defines the interface for structured observability during provisioning.
type Observer interface {
	// Event emits a structured event
	Event(event Event)

	// Progress reports progress for a phase
	Progress(phase string, current, total int)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType         // Type of event
	Phase     string            // Phase name (e.g., "secrets", "network")
	Message   string            // Human-readable message
	Resource  string            // Stack name or secret key if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventPhaseStarted indicates a provisioning phase has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a provisioning phase completed successfully.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseFailed indicates a provisioning phase failed.
	EventPhaseFailed EventType = "phase.failed"

	// EventResourceCreating indicates a resource is being created.
	EventResourceCreating EventType = "resource.creating"
	// EventResourceCreated indicates a resource was created successfully.
	EventResourceCreated EventType = "resource.created"
	// EventResourceExists indicates a resource already exists.
	EventResourceExists EventType = "resource.exists"
	// EventResourceFailed indicates a resource operation failed.
	EventResourceFailed EventType = "resource.failed"
	// EventResourceDeleting indicates a resource is being deleted.
	EventResourceDeleting EventType = "resource.deleting"
	// EventResourceDeleted indicates a resource was deleted successfully.
	EventResourceDeleted EventType = "resource.deleted"
	// EventResourceAbsent indicates a resource to delete did not exist.
	EventResourceAbsent EventType = "resource.absent"

	// EventValidationWarning indicates a validation warning.
	EventValidationWarning EventType = "validation.warning"
	// EventValidationError indicates a validation error.
	EventValidationError EventType = "validation.error"

	// EventProgress indicates progress in a long-running operation.
	EventProgress EventType = "progress"
)

// Resource types used in events.
const (
	ResourceStack       = "stack"
	ResourceSecret      = "secret"
	ResourceCertificate = "certificate"
)

// SlogObserver implements Observer on top of a slog.Logger.
type SlogObserver struct {
	logger        *slog.Logger
	contextFields map[string]string
}

// NewSlogObserver creates an observer writing to logger.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SlogObserver{
		logger:        logger,
		contextFields: make(map[string]string),
	}
}

// Event implements Observer interface.
func (o *SlogObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	fields := make(map[string]string, len(o.contextFields)+len(event.Fields))
	maps.Copy(fields, o.contextFields)
	maps.Copy(fields, event.Fields)

	attrs := make([]any, 0, 2*(len(fields)+3))
	attrs = append(attrs, "event", string(event.Type))
	if event.Phase != "" {
		attrs = append(attrs, "phase", event.Phase)
	}
	if event.Resource != "" {
		attrs = append(attrs, "resource", event.Resource)
	}
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		attrs = append(attrs, k, fields[k])
	}

	o.logger.Log(context.Background(), levelFor(event.Type), event.Message, attrs...)
}

// Progress implements Observer interface.
func (o *SlogObserver) Progress(phase string, current, total int) {
	percentage := 0
	if total > 0 {
		percentage = (current * 100) / total
	}
	o.Event(Event{
		Type:    EventProgress,
		Phase:   phase,
		Message: fmt.Sprintf("step %d/%d (%d%%)", current, total, percentage),
	})
}

// WithFields implements Observer interface.
func (o *SlogObserver) WithFields(fields map[string]string) Observer {
	newFields := make(map[string]string, len(o.contextFields)+len(fields))
	maps.Copy(newFields, o.contextFields)
	maps.Copy(newFields, fields)
	return &SlogObserver{
		logger:        o.logger,
		contextFields: newFields,
	}
}

func levelFor(t EventType) slog.Level {
	switch t {
	case EventPhaseFailed, EventResourceFailed, EventValidationError:
		return slog.LevelError
	case EventValidationWarning, EventResourceAbsent:
		return slog.LevelWarn
	case EventProgress:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Helper functions for common events

// LogPhaseStart logs a phase start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   phase,
		Message: "starting",
	})
}

// LogPhaseComplete logs a phase completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhaseFailed logs a phase failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseFailed,
		Phase:   phase,
		Message: fmt.Sprintf("failed: %v", err),
	})
}

// LogResourceCreating logs a resource creation start event.
func LogResourceCreating(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceCreating,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("creating %s", resourceType),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogResourceCreated logs a successful resource creation event.
func LogResourceCreated(observer Observer, phase, resourceType, resourceName, resourceID string) {
	fields := map[string]string{"type": resourceType}
	if resourceID != "" {
		fields["id"] = resourceID
	}
	observer.Event(Event{
		Type:     EventResourceCreated,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s created", resourceType),
		Fields:   fields,
	})
}

// LogResourceExists logs when a resource already exists.
func LogResourceExists(observer Observer, phase, resourceType, resourceName, resourceID string) {
	fields := map[string]string{"type": resourceType}
	if resourceID != "" {
		fields["id"] = resourceID
	}
	observer.Event(Event{
		Type:     EventResourceExists,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s already exists", resourceType),
		Fields:   fields,
	})
}

// LogResourceFailed logs a failed resource operation.
func LogResourceFailed(observer Observer, phase, resourceType, resourceName, reason string) {
	observer.Event(Event{
		Type:     EventResourceFailed,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s failed: %s", resourceType, reason),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogResourceDeleting logs a resource deletion start event.
func LogResourceDeleting(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceDeleting,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("deleting %s", resourceType),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogResourceDeleted logs a successful resource deletion event.
func LogResourceDeleted(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceDeleted,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s deleted", resourceType),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogResourceAbsent logs a resource that was already gone when it was
// about to be deleted.
func LogResourceAbsent(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceAbsent,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s does not exist, nothing to delete", resourceType),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}
