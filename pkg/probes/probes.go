package probes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/envelope-client/pkg/apiclient"
	"github.com/samvad-hq/envelope-client/pkg/httpclient"
	"gopkg.in/yaml.v3"
)

// Package probes contains scheduled envelope call definitions (YAML/JSON).

const (
	CompletionContent = "content"
	CompletionHeaders = "headers"
)

var defaultRequestDelayMs = 500

// Probe is one envelope call checked on every run.
type Probe struct {
	ID             string            `json:"id" yaml:"id"`
	Name           string            `json:"name" yaml:"name"`
	Method         string            `json:"method" yaml:"method"`
	Controller     string            `json:"controller" yaml:"controller"`
	Endpoint       string            `json:"endpoint" yaml:"endpoint"`
	Payload        map[string]any    `json:"payload" yaml:"payload"`
	Completion     string            `json:"completion" yaml:"completion"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	RequestDelayMs int               `json:"request_delay_ms" yaml:"request_delay_ms"`
}

type configFile struct {
	Probes []Probe `json:"probes" yaml:"probes"`
}

// Registry holds the probes loaded from a file.
type Registry struct {
	mu     sync.RWMutex
	probes []Probe
	idx    map[string]Probe
}

// LoadRegistry loads probe definitions from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("probes file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open probes file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read probes file: %w", err)
	}

	cf, err := parseConfig(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return NewRegistry(cf.Probes...)
}

// NewRegistry sanitizes and validates the given probes.
func NewRegistry(probes ...Probe) (*Registry, error) {
	if len(probes) == 0 {
		return nil, errors.New("probes file contains no probes entries")
	}

	reg := &Registry{
		probes: make([]Probe, len(probes)),
		idx:    make(map[string]Probe, len(probes)),
	}
	for i := range probes {
		p := sanitizeProbe(probes[i])
		if err := validateProbe(p); err != nil {
			return nil, fmt.Errorf("probe[%d]: %w", i, err)
		}
		if _, exists := reg.idx[p.ID]; exists {
			return nil, fmt.Errorf("duplicate probe id %q", p.ID)
		}
		reg.probes[i] = p
		reg.idx[p.ID] = p
	}
	return reg, nil
}

type unmarshalFn func([]byte, any) error

func parseConfig(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var cf configFile
		if err := d.fn(data, &cf); err == nil {
			return cf, nil
		}
	}

	return configFile{}, errors.New("probes file format not recognized (expected YAML or JSON)")
}

func sanitizeProbe(p Probe) Probe {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.Method = strings.ToUpper(strings.TrimSpace(p.Method))
	p.Controller = strings.TrimSpace(p.Controller)
	p.Endpoint = strings.TrimSpace(p.Endpoint)
	p.Completion = strings.ToLower(strings.TrimSpace(p.Completion))

	if p.Method == "" {
		p.Method = http.MethodGet
	}
	if p.RequestDelayMs <= 0 {
		p.RequestDelayMs = defaultRequestDelayMs
	}
	return p
}

func validateProbe(p Probe) error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required for probe %q", p.ID)
	}
	if p.Controller == "" {
		return fmt.Errorf("controller is required for probe %q", p.ID)
	}
	if p.Endpoint == "" {
		return fmt.Errorf("endpoint is required for probe %q", p.ID)
	}
	switch p.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
	default:
		return fmt.Errorf("unsupported method %q for probe %q", p.Method, p.ID)
	}
	switch p.Completion {
	case "", CompletionContent, CompletionHeaders:
	default:
		return fmt.Errorf("unsupported completion %q for probe %q (expected content or headers)", p.Completion, p.ID)
	}
	return nil
}

// All returns all configured probes.
func (r *Registry) All() []Probe {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Probe, len(r.probes))
	copy(out, r.probes)
	return out
}

// ByID returns the probe for the given id, if loaded.
func (r *Registry) ByID(id string) (Probe, bool) {
	if r == nil {
		return Probe{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Probe{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.idx[id]
	return p, ok
}

// Call converts the probe into an envelope call.
func (p Probe) Call() apiclient.Call {
	call := apiclient.Call{
		Method:     p.Method,
		Controller: p.Controller,
		Endpoint:   p.Endpoint,
		Headers:    p.Headers,
	}
	if len(p.Payload) > 0 {
		call.Payload = p.Payload
	}
	if p.Completion == CompletionHeaders {
		call.Completion = httpclient.CompletionHeadersRead
	}
	return call
}

// RequestDelay returns the pause taken after this probe before the next one.
func (p Probe) RequestDelay() time.Duration {
	if p.RequestDelayMs <= 0 {
		return time.Duration(defaultRequestDelayMs) * time.Millisecond
	}
	return time.Duration(p.RequestDelayMs) * time.Millisecond
}
