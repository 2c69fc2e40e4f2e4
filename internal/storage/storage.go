package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage keeps the last published state of every probe.

// Store remembers the last published outcome fingerprint per probe.
type Store interface {
	Close() error
	// Changed reports whether fingerprint differs from the last recorded
	// state of probeID, or that state has expired.
	Changed(probeID, fingerprint string) (bool, error)
	Record(probeID, fingerprint string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	// StateTTL is how long an unchanged state stays suppressed before it is
	// published again.
	StateTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultStateTTL        = 6 * time.Hour
	defaultCleanupInterval = time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.StateTTL <= 0 {
		opts.StateTTL = defaultStateTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// noopStore reports every outcome as changed.
type noopStore struct{}

func (noopStore) Close() error                         { return nil }
func (noopStore) Changed(string, string) (bool, error) { return true, nil }
func (noopStore) Record(string, string) error          { return nil }
