package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/envelope-client/pkg/httpclient"
)

// httpPublisher posts probe events as JSON to a webhook-style sink.
type httpPublisher struct {
	id        string
	method    string
	url       string
	headers   map[string]string
	transport httpclient.Client
	log       Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}

	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	headers := make(map[string]string, len(cfg.HTTP.Headers)+1)
	for k, v := range cfg.HTTP.Headers {
		headers[k] = v
	}
	headers["Content-Type"] = "application/json"

	return &httpPublisher{
		id:        cfg.ID,
		method:    cfg.HTTP.Method,
		url:       cfg.HTTP.URL,
		headers:   headers,
		transport: httpclient.NewRestyClient(httpclient.NewRestyHTTPClient("", timeout)),
		log:       ensureLogger(log),
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return TypeHTTP }

func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	resp, err := h.transport.Do(ctx, httpclient.Request{
		Method:  h.method,
		URL:     h.url,
		Headers: h.headers,
		Body:    payload,
	})
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	body, err := httpclient.ReadBody(resp)
	if err != nil {
		return fmt.Errorf("read http response: %w", err)
	}

	if status := resp.StatusCode(); status < 200 || status > 299 {
		return fmt.Errorf("http response status %d: %s", status, readBodySnippet(body))
	}
	h.log.DebugObj("http publisher delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": h.id,
		"probe_id":     evt.ProbeID,
		"status":       resp.StatusCode(),
	})
	return nil
}

func readBodySnippet(body []byte) string {
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
