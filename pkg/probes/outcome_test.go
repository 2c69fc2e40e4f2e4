package probes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeFingerprintIgnoresLatency(t *testing.T) {
	a := Outcome{ProbeID: "p1", Success: true, StatusCode: 1, HTTPStatus: 200, LatencyMs: 10}
	b := a
	b.LatencyMs = 900
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	c := a
	c.Success = false
	c.Message = "Name is required"
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestOutcomeFingerprintIgnoresTraceIDInRawBodies(t *testing.T) {
	first := Outcome{
		ProbeID:    "create",
		HTTPStatus: 400,
		Message:    `{"type":"t","title":"bad","status":"400","traceId":"00-aaa-01","errors":{"Name":["required"]}}`,
	}
	second := first
	second.Message = `{"errors":{"Name":["required"]},"traceId":"00-bbb-01","title":"bad","type":"t","status":"400"}`
	assert.Equal(t, first.Fingerprint(), second.Fingerprint())

	changed := first
	changed.Message = `{"type":"t","title":"bad","status":"400","traceId":"00-ccc-01","errors":{"Email":["required"]}}`
	assert.NotEqual(t, first.Fingerprint(), changed.Fingerprint())
}

func TestOutcomeFingerprintCollapsesStatusErrorBodies(t *testing.T) {
	a := Outcome{ProbeID: "p", HTTPStatus: 500, Error: `status code 500: details: {"traceId":"1"}`}
	b := Outcome{ProbeID: "p", HTTPStatus: 500, Error: `status code 500: details: {"traceId":"2"}`}
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	c := b
	c.HTTPStatus = 503
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	transportA := Outcome{ProbeID: "p", Error: "connection refused"}
	transportB := Outcome{ProbeID: "p", Error: "i/o timeout"}
	assert.NotEqual(t, transportA.Fingerprint(), transportB.Fingerprint())
}

func TestNormalizeMessageLeavesPlainText(t *testing.T) {
	assert.Equal(t, "bad request", normalizeMessage("bad request"))
	assert.Equal(t, "{broken", normalizeMessage("{broken"))
}

func TestOutcomeHealthy(t *testing.T) {
	assert.True(t, Outcome{Success: true}.Healthy())
	assert.False(t, Outcome{Success: true, Error: "boom"}.Healthy())
	assert.False(t, Outcome{}.Healthy())
}
