package roster

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Registry holds the loaded rosters keyed by session.
type Registry struct {
	mu         sync.RWMutex
	rosters    map[int]*Roster
	rostersDir string
}

// NewRegistry creates a new empty registry for the given directory.
func NewRegistry(rostersDir string) *Registry {
	return &Registry{
		rosters:    make(map[int]*Roster),
		rostersDir: rostersDir,
	}
}

// Load scans the rosters directory and loads every roster. Two directories
// declaring the same session is an error.
func (r *Registry) Load() error {
	entries, err := os.ReadDir(r.rostersDir)
	if err != nil {
		return fmt.Errorf("read rosters dir %s: %w", r.rostersDir, err)
	}

	loaded := make(map[int]*Roster)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(r.rostersDir, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, "manifest.yaml")); err != nil {
			continue
		}
		ro, err := LoadRoster(dir)
		if err != nil {
			return fmt.Errorf("load roster %s: %w", entry.Name(), err)
		}
		if prev, dup := loaded[ro.Session]; dup {
			return fmt.Errorf("session %d declared by both %s and %s", ro.Session, prev.Manifest.ID, ro.Manifest.ID)
		}
		loaded[ro.Session] = ro
	}

	r.mu.Lock()
	r.rosters = loaded
	r.mu.Unlock()
	return nil
}

// Reload reloads all rosters from disk (hot reload).
func (r *Registry) Reload() error {
	return r.Load()
}

// Put installs a roster directly, replacing any roster for the same session.
func (r *Registry) Put(ro *Roster) {
	r.mu.Lock()
	r.rosters[ro.Session] = ro
	r.mu.Unlock()
}

// Get returns the roster for a session.
func (r *Registry) Get(session int) (*Roster, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ro, ok := r.rosters[session]
	return ro, ok
}

// Sessions returns the loaded session numbers, ascending.
func (r *Registry) Sessions() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int, 0, len(r.rosters))
	for s := range r.rosters {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

// Info is the public metadata for a loaded roster.
type Info struct {
	ID          string   `json:"id"`
	Session     int      `json:"session"`
	Source      string   `json:"source,omitempty"`
	SourceURL   string   `json:"source_url,omitempty"`
	License     string   `json:"license,omitempty"`
	Legislators int      `json:"legislators"`
	Columns     []string `json:"columns"`
}

// List returns metadata for all loaded rosters, sorted by session.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.rosters))
	for _, ro := range r.rosters {
		info := Info{Session: ro.Session, Legislators: ro.Len(), Columns: ro.Columns()}
		if m := ro.Manifest; m != nil {
			info.ID, info.Source, info.SourceURL, info.License = m.ID, m.Source, m.SourceURL, m.License
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Session < infos[j].Session })
	return infos
}

// Count returns the number of loaded rosters.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rosters)
}

// TotalLegislators returns the number of rows across all rosters.
func (r *Registry) TotalLegislators() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, ro := range r.rosters {
		total += ro.Len()
	}
	return total
}
