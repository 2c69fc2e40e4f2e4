package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samvad-hq/envelope-client/pkg/envelope"
	"github.com/samvad-hq/envelope-client/pkg/httpclient"
)

const jsonContentType = "application/json; charset=utf-8"

// Call describes one envelope request. Only Method, Controller and Endpoint
// are required.
type Call struct {
	Method     string
	Controller string
	Endpoint   string
	// Payload is flattened into the query string for GET and DELETE and sent
	// as a JSON body otherwise. Nil means no payload.
	Payload any
	// Completion defaults to buffering the whole body.
	Completion httpclient.Completion
	Headers    map[string]string
}

// Get sends a GET call.
func Get[TOutput any, TStatus envelope.StatusCode](ctx context.Context, c *Client, controller, endpoint string, payload any) (envelope.Envelope[TOutput, TStatus], error) {
	return Send[TOutput, TStatus](ctx, c, Call{Method: http.MethodGet, Controller: controller, Endpoint: endpoint, Payload: payload})
}

// Post sends a POST call.
func Post[TOutput any, TStatus envelope.StatusCode](ctx context.Context, c *Client, controller, endpoint string, payload any) (envelope.Envelope[TOutput, TStatus], error) {
	return Send[TOutput, TStatus](ctx, c, Call{Method: http.MethodPost, Controller: controller, Endpoint: endpoint, Payload: payload})
}

// Put sends a PUT call.
func Put[TOutput any, TStatus envelope.StatusCode](ctx context.Context, c *Client, controller, endpoint string, payload any) (envelope.Envelope[TOutput, TStatus], error) {
	return Send[TOutput, TStatus](ctx, c, Call{Method: http.MethodPut, Controller: controller, Endpoint: endpoint, Payload: payload})
}

// Delete sends a DELETE call.
func Delete[TOutput any, TStatus envelope.StatusCode](ctx context.Context, c *Client, controller, endpoint string, payload any) (envelope.Envelope[TOutput, TStatus], error) {
	return Send[TOutput, TStatus](ctx, c, Call{Method: http.MethodDelete, Controller: controller, Endpoint: endpoint, Payload: payload})
}

// Send performs a single envelope call. ctx is forwarded to the transport as
// the cancellation signal; no retries are attempted.
//
// A 200 is decoded into the envelope. A 400 is folded into a failed envelope
// with a nil error. Any other status yields a *StatusError.
func Send[TOutput any, TStatus envelope.StatusCode](ctx context.Context, c *Client, call Call) (envelope.Envelope[TOutput, TStatus], error) {
	var zero envelope.Envelope[TOutput, TStatus]
	if c == nil || c.transport == nil {
		return zero, errors.New("apiclient: client has no transport")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if msg, ok := c.preflight(call.Payload); !ok {
		c.log.DebugObj("envelope call rejected before dispatch", "envelope_preflight", map[string]any{
			"controller": call.Controller,
			"endpoint":   call.Endpoint,
			"message":    msg,
		})
		return envelope.Failure[TOutput, TStatus](msg), nil
	}

	req, err := c.buildRequest(call)
	if err != nil {
		return zero, err
	}

	start := time.Now()
	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		c.log.WarnObj("envelope call failed", "envelope_transport_error", map[string]any{
			"method": req.Method,
			"url":    req.URL,
			"error":  err.Error(),
		})
		return zero, fmt.Errorf("send %s %s: %w", req.Method, req.URL, err)
	}

	env, err := interpret[TOutput, TStatus](resp, call.Completion)
	meta := map[string]any{
		"method":     req.Method,
		"url":        resp.URL(),
		"status":     resp.StatusCode(),
		"completion": call.Completion.String(),
		"elapsed_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		meta["error"] = err.Error()
		c.log.ErrorObj("envelope call returned an unusable response", "envelope_call", meta)
		return zero, err
	}
	meta["success"] = env.Success
	c.log.DebugObj("envelope call completed", "envelope_call", meta)
	return env, nil
}

func (c *Client) buildRequest(call Call) (httpclient.Request, error) {
	method := strings.ToUpper(strings.TrimSpace(call.Method))
	if method == "" {
		return httpclient.Request{}, errors.New("apiclient: call method is empty")
	}

	target, err := buildURL(method, call.Controller, call.Endpoint, call.Payload)
	if err != nil {
		return httpclient.Request{}, err
	}

	headers := make(map[string]string, len(c.headers)+len(call.Headers)+1)
	for k, v := range c.headers {
		headers[k] = v
	}
	for k, v := range call.Headers {
		headers[k] = v
	}

	req := httpclient.Request{
		Method:     method,
		URL:        target,
		Completion: call.Completion,
	}

	if !usesQuery(method) && !isNil(call.Payload) {
		body, err := json.Marshal(call.Payload)
		if err != nil {
			return httpclient.Request{}, &EncodeError{Payload: fmt.Sprintf("%T", call.Payload), Err: err}
		}
		req.Body = body
		headers["Content-Type"] = jsonContentType
	}

	if len(headers) > 0 {
		req.Headers = headers
	}
	return req, nil
}

// interpret maps the transport response onto an envelope.
func interpret[TOutput any, TStatus envelope.StatusCode](resp httpclient.Response, completion httpclient.Completion) (envelope.Envelope[TOutput, TStatus], error) {
	var env envelope.Envelope[TOutput, TStatus]

	body := resp.Body()
	defer func() {
		// Drain so a streamed connection can be reused.
		_, _ = io.Copy(io.Discard, body)
		body.Close()
	}()

	switch resp.StatusCode() {
	case http.StatusOK:
		if completion == httpclient.CompletionHeadersRead {
			if err := decodeStream(body, &env); err != nil {
				return envelope.Envelope[TOutput, TStatus]{}, &DecodeError{URL: resp.URL(), Err: err}
			}
			return env, nil
		}
		raw, err := io.ReadAll(body)
		if err != nil {
			return env, fmt.Errorf("read response body: %w", err)
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return envelope.Envelope[TOutput, TStatus]{}, &DecodeError{URL: resp.URL(), Err: err}
		}
		return env, nil

	case http.StatusBadRequest:
		raw, err := io.ReadAll(body)
		if err != nil {
			return env, fmt.Errorf("read response body: %w", err)
		}
		return envelope.Failure[TOutput, TStatus](badRequestMessage(raw)), nil

	default:
		raw, err := io.ReadAll(body)
		return env, &StatusError{
			URL:        resp.URL(),
			StatusCode: resp.StatusCode(),
			Body:       string(raw),
			ReadErr:    err,
		}
	}
}

// decodeStream decodes exactly one JSON value from r. Trailing data is
// rejected the same way json.Unmarshal rejects it.
func decodeStream(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}
	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return errors.New("invalid character after top-level value")
	}
}
