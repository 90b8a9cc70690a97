// Package storage keeps a short-lived ledger of handled launches.
package storage

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Store tracks launch ids that were already handled.
type Store interface {
	Close() error
	// UseLaunch marks id and reports whether it was already marked and unexpired.
	UseLaunch(id string) (bool, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	LaunchTTL       time.Duration
	CleanupInterval time.Duration
}

const (
	defaultLaunchTTL       = 24 * time.Hour
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

// LaunchID derives the ledger key for a launch token; the token itself is never stored.
func LaunchID(ltik string) string {
	sum := sha1.Sum([]byte(ltik))
	return hex.EncodeToString(sum[:])
}

func normalizeOptions(opts Options) Options {
	if opts.LaunchTTL <= 0 {
		opts.LaunchTTL = defaultLaunchTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                   { return nil }
func (noopStore) UseLaunch(string) (bool, error) { return false, nil }
