package httpclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient wraps an already configured resty.Client. Base URL, default
// headers, timeouts and pooling stay the caller's responsibility.
func NewRestyClient(client *resty.Client) *RestyClient {
	if client == nil {
		client = resty.New()
	}
	return &RestyClient{client: client}
}

// FromHTTPClient wraps a configured net/http client.
func FromHTTPClient(hc *http.Client, baseURL string) *RestyClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	c := resty.NewWithClient(hc)
	if baseURL != "" {
		c.SetBaseURL(baseURL)
	}
	return &RestyClient{client: c}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(baseURL string, timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	if baseURL != "" {
		c.SetBaseURL(baseURL)
	}
	return c
}

// Do performs the request with the specified context. The context is handed
// to resty untouched.
func (r *RestyClient) Do(ctx context.Context, in Request) (Response, error) {
	if in.Method == "" {
		return nil, errors.New("httpclient: request method is empty")
	}

	req := r.client.R().SetContext(ctx)
	if len(in.Headers) > 0 {
		req.SetHeaders(in.Headers)
	}
	if in.Body != nil {
		req.SetBody(in.Body)
	}

	streamed := in.Completion == CompletionHeadersRead
	if streamed {
		req.SetDoNotParseResponse(true)
	}

	resp, err := req.Execute(in.Method, in.URL)
	if err != nil {
		if streamed && resp != nil && resp.RawBody() != nil {
			resp.RawBody().Close()
		}
		return nil, err
	}
	return &restyResponseAdapter{resp: resp, streamed: streamed, fallbackURL: in.URL}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp        *resty.Response
	streamed    bool
	fallbackURL string
}

func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }

func (r *restyResponseAdapter) URL() string {
	if r.resp.Request != nil && r.resp.Request.URL != "" {
		return r.resp.Request.URL
	}
	return r.fallbackURL
}

func (r *restyResponseAdapter) Body() io.ReadCloser {
	if r.streamed {
		if raw := r.resp.RawBody(); raw != nil {
			return raw
		}
	}
	return io.NopCloser(bytes.NewReader(r.resp.Body()))
}
