package publishers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPublisher struct {
	id       string
	typ      string
	err      error
	closeErr error
	calls    int
	closed   bool
}

func (s *stubPublisher) ID() string   { return s.id }
func (s *stubPublisher) Type() string { return s.typ }
func (s *stubPublisher) Publish(context.Context, Event) error {
	s.calls++
	return s.err
}

type closingPublisher struct {
	stubPublisher
}

func (c *closingPublisher) Close() error {
	c.closed = true
	return c.closeErr
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	ok := &stubPublisher{id: "ok", typ: TypeHTTP}
	bad := &stubPublisher{id: "bad", typ: TypeSQS, err: errors.New("failed")}
	fanout := NewFanout([]Publisher{ok, nil, bad})

	assert.Equal(t, 2, fanout.Size())

	count, err := fanout.Publish(context.Background(), Event{ProbeID: "p1"})
	assert.Equal(t, 1, count)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqs publisher[bad]")
	assert.Equal(t, 1, ok.calls)
	assert.Equal(t, 1, bad.calls)
}

func TestFanoutNilIsEmpty(t *testing.T) {
	var fanout *Fanout
	count, err := fanout.Publish(context.Background(), Event{})
	assert.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, fanout.Size())
	assert.NoError(t, fanout.Close())
}

func TestFanoutCloseReleasesClosers(t *testing.T) {
	plain := &stubPublisher{id: "plain", typ: TypeHTTP}
	closer := &closingPublisher{stubPublisher{id: "topic", typ: TypeGCPPubSub, closeErr: errors.New("flush")}}

	err := NewFanout([]Publisher{plain, closer}).Close()
	require.Error(t, err)
	assert.True(t, closer.closed)
	assert.Contains(t, err.Error(), "gcp_pubsub publisher[topic]")
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	pubs, err := BuildAll(context.Background(), DefaultRegistry(), []PublisherConfig{
		{ID: "http", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://example.com", Method: "POST", TimeoutSeconds: 1}},
	}, nil)
	require.NoError(t, err)
	require.Len(t, pubs, 1)
	assert.Equal(t, "http", pubs[0].ID())
	assert.Equal(t, TypeHTTP, pubs[0].Type())
}

func TestBuildAllUnknownTypeClosesBuilt(t *testing.T) {
	built := &closingPublisher{stubPublisher{id: "first", typ: "fake"}}
	reg := NewRegistry(map[string]Builder{
		"fake": func(context.Context, PublisherConfig, Logger) (Publisher, error) { return built, nil },
	})

	_, err := BuildAll(context.Background(), reg, []PublisherConfig{
		{ID: "first", Type: "fake"},
		{ID: "second", Type: "kafka"},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no publisher registered for type "kafka"`)
	assert.True(t, built.closed)
}

func TestRegistryRejectsMissingType(t *testing.T) {
	_, err := DefaultRegistry().PublisherFor(context.Background(), PublisherConfig{ID: "x"}, nil)
	assert.Error(t, err)
}
