package envelope

import (
	"errors"
	"fmt"
)

// StatusCode constrains the caller's domain status enumeration. It travels
// next to the payload and is independent of the HTTP status.
type StatusCode interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Envelope is the standard response body returned by envelope services.
//
// The zero value is a fresh envelope: no data, no message, no message type
// and Success=false.
type Envelope[TData any, TStatus StatusCode] struct {
	Data        TData        `json:"data"`
	Success     bool         `json:"success"`
	Message     *string      `json:"message"`
	MessageType *MessageType `json:"messageType"`
	StatusCode  TStatus      `json:"statusCode"`
}

// Failure builds the envelope returned for a rejected request.
func Failure[TData any, TStatus StatusCode](message string) Envelope[TData, TStatus] {
	mt := Error
	return Envelope[TData, TStatus]{
		Success:     false,
		Message:     &message,
		MessageType: &mt,
	}
}

// Text returns the message or an empty string when there is none.
func (e Envelope[TData, TStatus]) Text() string {
	if e.Message == nil {
		return ""
	}
	return *e.Message
}

// Validate reports envelopes whose message type is set without a message or
// is outside the known range.
func (e Envelope[TData, TStatus]) Validate() error {
	if e.MessageType == nil {
		return nil
	}
	if e.Message == nil {
		return errors.New("envelope: messageType set without message")
	}
	if !e.MessageType.Valid() {
		return fmt.Errorf("envelope: unknown messageType %d", int(*e.MessageType))
	}
	return nil
}
