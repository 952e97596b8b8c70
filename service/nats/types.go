package nats

import (
	"fmt"
	"time"
)

// SubjectPrefix is the subject namespace for ping events.
const SubjectPrefix = "pings"

// PingEvent represents a confirmed ping published to NATS.
// This is published to the subject "pings.{program_id}".
type PingEvent struct {
	// Transaction identifiers
	Signature string `json:"signature"`
	ProgramID string `json:"program_id"`
	Payer     string `json:"payer"`

	// Network information
	Cluster    string `json:"cluster"`
	Commitment string `json:"commitment"`

	// Timing information
	ConfirmedAt time.Time `json:"confirmed_at"`
	ElapsedMS   int64     `json:"elapsed_ms"`

	// Metadata
	PublishedAt time.Time `json:"published_at"`
}

// Subject returns the subject the event is published on.
func (e *PingEvent) Subject() string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, e.ProgramID)
}
