package httpclient

import (
	"context"
	"io"
)

// Completion selects when a call is considered complete.
type Completion int

const (
	// CompletionContentRead returns once the whole body has been buffered.
	CompletionContentRead Completion = iota
	// CompletionHeadersRead returns as soon as the headers arrive; the body is
	// streamed from the connection.
	CompletionHeadersRead
)

func (c Completion) String() string {
	switch c {
	case CompletionContentRead:
		return "content"
	case CompletionHeadersRead:
		return "headers"
	default:
		return "unknown"
	}
}

// Request is a single outbound call.
type Request struct {
	Method     string
	URL        string
	Headers    map[string]string
	Body       []byte
	Completion Completion
}

// Response is a minimal HTTP response contract.
type Response interface {
	StatusCode() int
	// URL is the final request URL, after any base address was applied.
	URL() string
	// Body is never nil. Callers close it.
	Body() io.ReadCloser
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// ReadBody drains and closes the response body.
func ReadBody(resp Response) ([]byte, error) {
	body := resp.Body()
	defer body.Close()
	return io.ReadAll(body)
}
