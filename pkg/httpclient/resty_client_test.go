package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestyClientDoBuffersBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/create", r.URL.Path)
		assert.Equal(t, "1", r.Header.Get("X-Test"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"a":1}`, string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}))
	defer srv.Close()

	client := NewRestyClient(NewRestyHTTPClient(srv.URL, 2*time.Second))
	resp, err := client.Do(context.Background(), Request{
		Method:  http.MethodPost,
		URL:     "users/create",
		Headers: map[string]string{"X-Test": "1"},
		Body:    []byte(`{"a":1}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode())
	assert.Equal(t, srv.URL+"/users/create", resp.URL())

	body, err := ReadBody(resp)
	require.NoError(t, err)
	assert.Equal(t, "created", string(body))
}

func TestRestyClientDoStreamsOnHeadersRead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer srv.Close()

	client := FromHTTPClient(srv.Client(), srv.URL)
	resp, err := client.Do(context.Background(), Request{
		Method:     http.MethodGet,
		URL:        "stream/data",
		Completion: CompletionHeadersRead,
	})
	require.NoError(t, err)

	adapter, ok := resp.(*restyResponseAdapter)
	require.True(t, ok)
	assert.True(t, adapter.streamed)

	body, err := ReadBody(resp)
	require.NoError(t, err)
	assert.Len(t, body, 4096)
}

func TestRestyClientDoHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewRestyClient(resty.New().SetBaseURL(srv.URL))
	_, err := client.Do(ctx, Request{Method: http.MethodGet, URL: "slow/call"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRestyClientDoRejectsEmptyMethod(t *testing.T) {
	_, err := NewRestyClient(nil).Do(context.Background(), Request{URL: "a/b"})
	assert.Error(t, err)
}

func TestCompletionString(t *testing.T) {
	assert.Equal(t, "content", CompletionContentRead.String())
	assert.Equal(t, "headers", CompletionHeadersRead.String())
	assert.Equal(t, "unknown", Completion(7).String())
}
