package entities

import "time"

// EventType identifies the kind of assistant event on the bus.
type EventType string

const (
	EventSummaryReady   EventType = "summary.ready"
	EventSummaryFailed  EventType = "summary.failed"
	EventAnalysisStored EventType = "analysis.stored"
)

// AssistantEvent is published on the event bus when background work
// completes or durable state changes.
type AssistantEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
