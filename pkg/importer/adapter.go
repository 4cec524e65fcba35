// Package importer downloads the public congress-legislators feeds and turns
// them into per-session roster directories.
package importer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hazyhaar/floorspeech/pkg/roster"
)

// Adapter is one legislator feed.
type Adapter interface {
	// ID returns the unique identifier of this adapter (e.g. "legislators-current").
	ID() string
	// Description returns a human-readable description.
	Description() string
	// DefaultURL returns the source URL used when seeding the database.
	DefaultURL() string
	// License returns the license identifier of the feed.
	License() string
	// Fetch downloads the feed at sourceURL and decodes its entries.
	Fetch(ctx context.Context, sourceURL string) ([]roster.FeedLegislator, error)
}

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// Register adds an adapter to the global registry.
func Register(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	adapters[a.ID()] = a
}

// Get returns a registered adapter by ID, or an error if not found.
func Get(id string) (Adapter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[id]
	if !ok {
		return nil, fmt.Errorf("unknown import source: %q", id)
	}
	return a, nil
}

// All returns all registered adapters sorted by ID.
func All() []Adapter {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]Adapter, 0, len(adapters))
	for _, a := range adapters {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}
