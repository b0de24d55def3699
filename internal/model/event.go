package model

import "time"

// Event types recorded by the event sink.
const (
	EventAttempt  = "attempt"
	EventStartup  = "startup"
	EventShutdown = "shutdown"
	EventRecovery = "recovery"
)

// Event is a record handed to the event sink.
//
// Attempt events carry the classification fields; system events
// (startup, shutdown, recovery) only carry Details.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	URL        string    `json:"url,omitempty"`
	Label      Label     `json:"label,omitempty"`
	Confidence int       `json:"confidence,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Stage      string    `json:"stage,omitempty"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewAttemptEvent builds an attempt event from a result.
// The caller is expected to fill in ID.
func NewAttemptEvent(r *Result) Event {
	return Event{
		Type:       EventAttempt,
		URL:        r.URL,
		Label:      r.Verdict.Label,
		Confidence: r.Verdict.Confidence,
		Reason:     r.Verdict.Reason,
		Stage:      r.Stage,
		Timestamp:  time.Now(),
	}
}

// NewSystemEvent builds a system event such as startup or shutdown.
func NewSystemEvent(eventType, details string) Event {
	return Event{
		Type:      eventType,
		Details:   details,
		Timestamp: time.Now(),
	}
}
