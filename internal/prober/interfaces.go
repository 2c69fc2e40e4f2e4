package prober

import (
	"context"

	"github.com/samvad-hq/envelope-client/pkg/publishers"
)

// EventPublisher publishes changed probe outcomes downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// StateStore remembers the last published outcome of every probe.
type StateStore interface {
	Changed(probeID, fingerprint string) (bool, error)
	Record(probeID, fingerprint string) error
}
