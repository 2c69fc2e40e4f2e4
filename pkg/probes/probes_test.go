package probes

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/envelope-client/pkg/httpclient"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writeFile(t, "probes.yaml", `
probes:
  - id: users-search
    name: User search
    controller: users
    endpoint: search
    payload:
      name: ana
      active: true
  - id: orders-create
    name: Order create
    method: post
    controller: orders
    endpoint: create
    completion: headers
    request_delay_ms: 750
    headers:
      X-Probe: "1"
    payload:
      sku: A-1
      qty: 2
`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, reg.All(), 2)

	search, ok := reg.ByID("users-search")
	require.True(t, ok)
	assert.Equal(t, http.MethodGet, search.Method)
	assert.Equal(t, 500*time.Millisecond, search.RequestDelay())

	call := search.Call()
	assert.Equal(t, "users", call.Controller)
	assert.Equal(t, "search", call.Endpoint)
	assert.Equal(t, httpclient.CompletionContentRead, call.Completion)
	assert.Equal(t, map[string]any{"name": "ana", "active": true}, call.Payload)

	create, ok := reg.ByID("orders-create")
	require.True(t, ok)
	assert.Equal(t, http.MethodPost, create.Method)
	assert.Equal(t, 750*time.Millisecond, create.RequestDelay())
	assert.Equal(t, httpclient.CompletionHeadersRead, create.Call().Completion)
	assert.Equal(t, "1", create.Call().Headers["X-Probe"])
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeFile(t, "probes.json", `{"probes":[{"id":"p","name":"P","controller":"c","endpoint":"e"}]}`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	p, ok := reg.ByID("p")
	require.True(t, ok)
	assert.Nil(t, p.Call().Payload)
}

func TestLoadRegistryRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"duplicate": `
probes:
  - {id: a, name: A, controller: c, endpoint: e}
  - {id: a, name: B, controller: c, endpoint: e}
`,
		"missing controller": `
probes:
  - {id: a, name: A, endpoint: e}
`,
		"bad method": `
probes:
  - {id: a, name: A, controller: c, endpoint: e, method: TRACE}
`,
		"bad completion": `
probes:
  - {id: a, name: A, controller: c, endpoint: e, completion: eventually}
`,
		"empty": `probes: []`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadRegistry(writeFile(t, "probes.yaml", content))
			assert.Error(t, err)
		})
	}
}

func TestLoadRegistryMissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	_, err = LoadRegistry(" ")
	assert.Error(t, err)
}
