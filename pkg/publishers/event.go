package publishers

import (
	"time"

	"github.com/samvad-hq/envelope-client/pkg/probes"
)

// Event represents the payload published downstream.
type Event struct {
	ProbeID   string         `json:"probe_id"`
	ProbeName string         `json:"probe_name"`
	Healthy   bool           `json:"healthy"`
	Outcome   probes.Outcome `json:"outcome"`
	CheckedAt time.Time      `json:"checked_at"`
}

// NewEvent constructs an Event for the given probe outcome.
func NewEvent(probeID, probeName string, outcome probes.Outcome) Event {
	return Event{
		ProbeID:   probeID,
		ProbeName: probeName,
		Healthy:   outcome.Healthy(),
		Outcome:   outcome,
		CheckedAt: time.Now().UTC(),
	}
}

// attributes are attached to queue messages so consumers can filter without
// decoding the body.
func (e Event) attributes() map[string]string {
	healthy := "false"
	if e.Healthy {
		healthy = "true"
	}
	return map[string]string{
		"probe_id": e.ProbeID,
		"healthy":  healthy,
	}
}
