package apiclient

import (
	"bytes"
	"encoding/json"
)

// problemKeys must all be present at the top level of a 400 body for it to be
// treated as an invalid-model-state document.
var problemKeys = []string{"errors", "type", "title", "status", "traceId"}

// ProblemDetails is the validation error document returned with HTTP 400.
type ProblemDetails struct {
	Type    string          `json:"type"`
	Title   string          `json:"title"`
	Status  int             `json:"status"`
	TraceID string          `json:"traceId"`
	Errors  json.RawMessage `json:"errors"`
}

// parseProblemDetails returns the document when body carries every problem key.
func parseProblemDetails(body []byte) (*ProblemDetails, bool) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, false
	}
	for _, k := range problemKeys {
		if _, ok := top[k]; !ok {
			return nil, false
		}
	}

	var pd ProblemDetails
	if err := json.Unmarshal(body, &pd); err != nil {
		return nil, false
	}
	return &pd, true
}

// FirstError returns the first string of the first array found under errors,
// walking object members in document order. errors may be an object of
// field -> messages or a bare array of messages.
func (p *ProblemDetails) FirstError() (string, bool) {
	if p == nil || len(p.Errors) == 0 {
		return "", false
	}
	if msg, ok := firstString(p.Errors); ok {
		return msg, true
	}

	dec := json.NewDecoder(bytes.NewReader(p.Errors))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return "", false
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return "", false
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return "", false
		}
		if msg, ok := firstString(value); ok {
			return msg, true
		}
	}
	return "", false
}

// firstString returns raw[0] when raw is an array starting with a string.
func firstString(raw json.RawMessage) (string, bool) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil || len(arr) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(arr[0], &s); err != nil {
		return "", false
	}
	return s, true
}

// badRequestMessage is the envelope message for a 400 body.
func badRequestMessage(body []byte) string {
	if pd, ok := parseProblemDetails(body); ok {
		if msg, ok := pd.FirstError(); ok {
			return msg
		}
	}
	return string(body)
}
