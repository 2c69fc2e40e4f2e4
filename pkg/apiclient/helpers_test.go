package apiclient

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/samvad-hq/envelope-client/pkg/httpclient"
)

type testStatus int

const (
	statusNone testStatus = iota
	statusCreated
)

type point struct {
	X int `json:"x"`
}

// fakeTransport records the last request and answers with a canned response.
type fakeTransport struct {
	mu     sync.Mutex
	calls  int
	last   httpclient.Request
	status int
	body   string
	err    error
	// readErr is returned by the body once its content is exhausted.
	readErr error
}

func (f *fakeTransport) Do(_ context.Context, req httpclient.Request) (httpclient.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return fakeResponse{status: f.status, url: "http://svc.local/" + req.URL, body: f.body, readErr: f.readErr}, nil
}

type fakeResponse struct {
	status  int
	url     string
	body    string
	readErr error
}

func (r fakeResponse) StatusCode() int { return r.status }
func (r fakeResponse) URL() string     { return r.url }
func (r fakeResponse) Body() io.ReadCloser {
	if r.readErr != nil {
		return io.NopCloser(io.MultiReader(strings.NewReader(r.body), failingReader{r.readErr}))
	}
	return io.NopCloser(strings.NewReader(r.body))
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }

// recordingLogger keeps the messages it was asked to log.
type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *recordingLogger) add(msg string) {
	l.mu.Lock()
	l.msgs = append(l.msgs, msg)
	l.mu.Unlock()
}

func (l *recordingLogger) InfoObj(msg, _ string, _ interface{})  { l.add(msg) }
func (l *recordingLogger) DebugObj(msg, _ string, _ interface{}) { l.add(msg) }
func (l *recordingLogger) WarnObj(msg, _ string, _ interface{})  { l.add(msg) }
func (l *recordingLogger) ErrorObj(msg, _ string, _ interface{}) { l.add(msg) }
