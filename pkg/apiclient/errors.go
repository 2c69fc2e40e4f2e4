package apiclient

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrUnexpectedStatus matches every *StatusError through errors.Is.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// StatusError is returned when the service answers with anything other than
// 200 or 400.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
	// ReadErr is set when the body could not be read in full; Body then holds
	// what was received.
	ReadErr error
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("error calling service %q: status code %d: details: %s", e.URL, e.StatusCode, bodySnippet([]byte(e.Body)))
	if e.ReadErr != nil {
		msg += fmt.Sprintf(" (body read failed: %v)", e.ReadErr)
	}
	return msg
}

func (e *StatusError) Unwrap() error { return e.ReadErr }

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// DecodeError is returned when a 200 body does not match the envelope shape.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode envelope from %q: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError is returned when the payload cannot be turned into a query
// string or a JSON body.
type EncodeError struct {
	Payload string
	Err     error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode payload %s: %v", e.Payload, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
