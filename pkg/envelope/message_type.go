package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MessageType classifies the envelope message.
type MessageType int

const (
	// Info carries contextual information about a successful call.
	Info MessageType = iota + 1
	// Success reports a successful call.
	Success
	// Warning reports a successful call that deserves attention.
	Warning
	// Error reports a failed call.
	Error
)

var messageTypeNames = map[MessageType]string{
	Info:    "info",
	Success: "success",
	Warning: "warning",
	Error:   "error",
}

func (m MessageType) String() string {
	if name, ok := messageTypeNames[m]; ok {
		return name
	}
	return "MessageType(" + strconv.Itoa(int(m)) + ")"
}

// Valid reports whether m is one of the declared message types.
func (m MessageType) Valid() bool {
	_, ok := messageTypeNames[m]
	return ok
}

// ParseMessageType resolves a message type from its name (any case) or its
// numeric value.
func ParseMessageType(s string) (MessageType, error) {
	s = strings.TrimSpace(s)
	for mt, name := range messageTypeNames {
		if strings.EqualFold(s, name) {
			return mt, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && MessageType(n).Valid() {
		return MessageType(n), nil
	}
	return 0, fmt.Errorf("envelope: unknown message type %q", s)
}

func (m MessageType) MarshalJSON() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("envelope: cannot marshal message type %d", int(m))
	}
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either the name ("error") or the number (4).
func (m *MessageType) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		mt, err := ParseMessageType(s)
		if err != nil {
			return err
		}
		*m = mt
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("envelope: message type must be a string or number: %w", err)
	}
	if !MessageType(n).Valid() {
		return fmt.Errorf("envelope: unknown message type %d", n)
	}
	*m = MessageType(n)
	return nil
}
