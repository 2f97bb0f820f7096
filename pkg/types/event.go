package types

// SessionEventType defines the type of event emitted by a tab session.
type SessionEventType string

const (
	EventTypeTabsLoaded        SessionEventType = "tabs_loaded"        // EventTypeTabsLoaded indicates the tab list was refreshed.
	EventTypeOperationStart    SessionEventType = "operation_start"    // EventTypeOperationStart indicates a session operation has started.
	EventTypeOperationProgress SessionEventType = "operation_progress" // EventTypeOperationProgress indicates an operation moved to its next phase.
	EventTypeOperationComplete SessionEventType = "operation_complete" // EventTypeOperationComplete indicates an operation finished; Content holds the summary.
	EventTypeOperationError    SessionEventType = "operation_error"    // EventTypeOperationError indicates an operation failed as a whole.
	EventTypeUpdateBusy        SessionEventType = "update_busy"        // EventTypeUpdateBusy indicates a change in the session's busy status.
)

// SessionEvent represents an event emitted by a session while it works.
type SessionEvent struct {
	// Metadata holds optional additional information about the event.
	Metadata map[string]interface{}

	// Error contains error information for error events.
	Error error

	// Content holds the human-readable status or summary.
	Content string

	// Operation names the session operation the event belongs to.
	Operation string

	// Type indicates the kind of event.
	Type SessionEventType

	// IsBusy indicates if the session is busy (for busy status events).
	IsBusy bool

	// TabCount and DuplicateCount are set on tabs-loaded events.
	TabCount       int
	DuplicateCount int
}

// NewTabsLoadedEvent creates a tabs loaded event.
func NewTabsLoadedEvent(tabCount, duplicateCount int) *SessionEvent {
	return &SessionEvent{
		Type:           EventTypeTabsLoaded,
		TabCount:       tabCount,
		DuplicateCount: duplicateCount,
		Metadata:       make(map[string]interface{}),
	}
}

// NewOperationStartEvent creates an operation start event with a status line.
func NewOperationStartEvent(operation, status string) *SessionEvent {
	return &SessionEvent{
		Type:      EventTypeOperationStart,
		Operation: operation,
		Content:   status,
		Metadata:  make(map[string]interface{}),
	}
}

// NewOperationProgressEvent creates an operation progress event.
func NewOperationProgressEvent(operation, status string) *SessionEvent {
	return &SessionEvent{
		Type:      EventTypeOperationProgress,
		Operation: operation,
		Content:   status,
		Metadata:  make(map[string]interface{}),
	}
}

// NewOperationCompleteEvent creates an operation complete event.
func NewOperationCompleteEvent(operation, summary string) *SessionEvent {
	return &SessionEvent{
		Type:      EventTypeOperationComplete,
		Operation: operation,
		Content:   summary,
		Metadata:  make(map[string]interface{}),
	}
}

// NewOperationErrorEvent creates an operation error event.
func NewOperationErrorEvent(operation string, err error) *SessionEvent {
	return &SessionEvent{
		Type:      EventTypeOperationError,
		Operation: operation,
		Error:     err,
		Metadata:  make(map[string]interface{}),
	}
}

// NewUpdateBusyEvent creates a busy status update event.
func NewUpdateBusyEvent(isBusy bool) *SessionEvent {
	return &SessionEvent{
		Type:     EventTypeUpdateBusy,
		IsBusy:   isBusy,
		Metadata: make(map[string]interface{}),
	}
}

// WithMetadata adds metadata to an event and returns the event for chaining.
func (e *SessionEvent) WithMetadata(key string, value interface{}) *SessionEvent {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// IsOperationEvent returns true if the event tracks an operation's lifecycle.
func (e *SessionEvent) IsOperationEvent() bool {
	return e.Type == EventTypeOperationStart ||
		e.Type == EventTypeOperationProgress ||
		e.Type == EventTypeOperationComplete ||
		e.Type == EventTypeOperationError
}

// IsStatusEvent returns true if the event carries a status line for the UI.
func (e *SessionEvent) IsStatusEvent() bool {
	return e.Type == EventTypeOperationStart || e.Type == EventTypeOperationProgress
}

// IsErrorEvent returns true if this is an error event.
func (e *SessionEvent) IsErrorEvent() bool {
	return e.Type == EventTypeOperationError
}
