package prober

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/envelope-client/internal/logger"
	"github.com/samvad-hq/envelope-client/pkg/apiclient"
	"github.com/samvad-hq/envelope-client/pkg/httpclient"
	"github.com/samvad-hq/envelope-client/pkg/probes"
	"github.com/samvad-hq/envelope-client/pkg/publishers"
)

// Service runs probes against an envelope service and publishes outcomes
// whose state changed since the last run.
type Service struct {
	client    *apiclient.Client
	publisher EventPublisher
	store     StateStore
	log       logger.Logger
}

// NewService wires a prober on top of the transport. opts configure the
// underlying envelope client.
func NewService(transport httpclient.Client, pub EventPublisher, log logger.Logger, store StateStore, opts ...apiclient.Option) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	opts = append([]apiclient.Option{apiclient.WithLogger(log)}, opts...)

	var client *apiclient.Client
	if transport != nil {
		client = apiclient.New(statusTap{next: transport}, opts...)
	}

	return &Service{
		client:    client,
		publisher: pub,
		store:     store,
		log:       log,
	}
}

// Run executes one pass over all probes. A cancelled context stops the pass
// without reporting the remaining probes as failures.
func (s *Service) Run(ctx context.Context, list []probes.Probe) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("prober service is not initialized")
	}
	if len(list) == 0 {
		return fmt.Errorf("no probes configured")
	}

	var errs []error
	for i, p := range list {
		if ctx.Err() != nil {
			break
		}
		if err := s.runProbe(ctx, p); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("probe failed", "probe_error", map[string]any{
				"probe_id": p.ID,
				"error":    err.Error(),
			})
		}
		if i < len(list)-1 && !sleep(ctx, p.RequestDelay()) {
			break
		}
	}
	return errors.Join(errs...)
}

// Check performs the probe call and captures its outcome. Fatal call errors
// are reported inside the outcome rather than returned.
func (s *Service) Check(ctx context.Context, p probes.Probe) probes.Outcome {
	ctx, status := withStatusSlot(ctx)
	start := time.Now()
	env, err := apiclient.Send[json.RawMessage, int](ctx, s.client, p.Call())

	out := probes.Outcome{
		ProbeID:    p.ID,
		HTTPStatus: *status,
		LatencyMs:  time.Since(start).Milliseconds(),
	}
	if err != nil {
		out.Error = err.Error()
		var se *apiclient.StatusError
		if errors.As(err, &se) {
			out.HTTPStatus = se.StatusCode
		}
		return out
	}

	out.Success = env.Success
	out.StatusCode = env.StatusCode
	if env.Message != nil {
		out.Message = *env.Message
	}
	if env.MessageType != nil {
		out.MessageType = env.MessageType.String()
	}
	return out
}

func (s *Service) runProbe(ctx context.Context, p probes.Probe) error {
	outcome := s.Check(ctx, p)
	if ctx.Err() != nil {
		return nil
	}

	s.log.InfoObj("probe checked", "probe_result", map[string]any{
		"probe_id":    p.ID,
		"healthy":     outcome.Healthy(),
		"http_status": outcome.HTTPStatus,
		"latency_ms":  outcome.LatencyMs,
	})

	fingerprint := outcome.Fingerprint()
	if s.store != nil {
		changed, err := s.store.Changed(p.ID, fingerprint)
		if err != nil {
			s.log.WarnObj("state lookup failed; publishing anyway", "probe_state_error", map[string]any{
				"probe_id": p.ID,
				"error":    err.Error(),
			})
		} else if !changed {
			s.log.DebugObj("probe state unchanged", "probe_state", map[string]any{"probe_id": p.ID})
			return nil
		}
	}

	if s.publisher != nil {
		if _, err := s.publisher.Publish(ctx, publishers.NewEvent(p.ID, p.Name, outcome)); err != nil {
			return fmt.Errorf("publish probe %s: %w", p.ID, err)
		}
	}

	if s.store != nil {
		if err := s.store.Record(p.ID, fingerprint); err != nil {
			return fmt.Errorf("record probe %s state: %w", p.ID, err)
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
