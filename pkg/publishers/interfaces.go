package publishers

import "context"

// Publisher sends probe events to a downstream sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
