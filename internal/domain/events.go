package domain

import (
	"fmt"
	"time"
)

// EventType represents the type of stream event
type EventType string

const (
	EventStart    EventType = "start"
	EventProgress EventType = "progress"
	EventMessage  EventType = "message"
	EventError    EventType = "error"
	EventComplete EventType = "complete"
)

// Terminal reports whether no further events follow an event of this type.
func (t EventType) Terminal() bool {
	return t == EventError || t == EventComplete
}

// StreamEvent represents an event emitted by the worker during a job
type StreamEvent struct {
	Type      EventType `json:"type"`
	JobID     string    `json:"job_id,omitempty"`
	Done      int       `json:"done,omitempty"`
	Total     int       `json:"total,omitempty"`
	Message   string    `json:"message,omitempty"`
	Err       error     `json:"-"`
	Result    *Result   `json:"result,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Result describes a finished output document
type Result struct {
	JobID      string        `json:"job_id"`
	OutputPath string        `json:"output_path"`
	Pages      int           `json:"pages"`
	Duration   time.Duration `json:"duration"`
}

func StartEvent(total int) StreamEvent {
	return StreamEvent{Type: EventStart, Total: total, Timestamp: time.Now()}
}

// ProgressEvent reports that unit done of total is being processed.
func ProgressEvent(done, total int) StreamEvent {
	return StreamEvent{Type: EventProgress, Done: done, Total: total, Timestamp: time.Now()}
}

func MessageEvent(format string, args ...any) StreamEvent {
	return StreamEvent{Type: EventMessage, Message: fmt.Sprintf(format, args...), Timestamp: time.Now()}
}

func ErrorEvent(err error) StreamEvent {
	return StreamEvent{Type: EventError, Err: err, Message: err.Error(), Timestamp: time.Now()}
}

func CompleteEvent(res Result) StreamEvent {
	return StreamEvent{
		Type:      EventComplete,
		Done:      res.Pages,
		Total:     res.Pages,
		Message:   fmt.Sprintf("Saved %d pages to %s", res.Pages, res.OutputPath),
		Result:    &res,
		Timestamp: time.Now(),
	}
}
