package probes

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// volatileKeys are per-request members of JSON error bodies that must not
// make an otherwise identical answer look new.
var volatileKeys = map[string]struct{}{
	"traceid":   {},
	"timestamp": {},
	"requestid": {},
}

// Outcome is the observed result of one probe call.
type Outcome struct {
	ProbeID     string `json:"probe_id"`
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	MessageType string `json:"message_type,omitempty"`
	StatusCode  int    `json:"status_code"`
	HTTPStatus  int    `json:"http_status"`
	Error       string `json:"error,omitempty"`
	LatencyMs   int64  `json:"latency_ms"`
}

// Fingerprint identifies the state of an outcome. Latency is left out, JSON
// messages are stripped of volatile members and unexpected-status errors
// collapse to their HTTP status, so repeated answers map to the same key.
func (o Outcome) Fingerprint() string {
	errPart := o.Error
	if errPart != "" && o.HTTPStatus >= 300 {
		errPart = "unexpected status"
	}
	raw := fmt.Sprintf("%s|%t|%s|%s|%d|%d|%s", o.ProbeID, o.Success, normalizeMessage(o.Message), o.MessageType, o.StatusCode, o.HTTPStatus, errPart)
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Healthy reports whether the call succeeded end to end.
func (o Outcome) Healthy() bool {
	return o.Error == "" && o.Success
}

// normalizeMessage re-encodes JSON object messages without volatile keys.
// encoding/json sorts map keys, so member order does not matter either.
func normalizeMessage(msg string) string {
	trimmed := strings.TrimSpace(msg)
	if !strings.HasPrefix(trimmed, "{") {
		return msg
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return msg
	}
	for k := range obj {
		if _, ok := volatileKeys[strings.ToLower(k)]; ok {
			delete(obj, k)
		}
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return msg
	}
	return string(out)
}
