// CLAUDE:SUMMARY Gob serialization of roster rows for fast loading.
package roster

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/hazyhaar/floorspeech/pkg/speaker"
)

// gobRoster is the on-disk layout of data.gob.
type gobRoster struct {
	Columns     []string
	Legislators []Legislator
}

// loadGob reads rows written by SaveGob and canonicalizes them.
func loadGob(path string, session int, mode string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gob file: %w", err)
	}
	defer f.Close()

	var g gobRoster
	if err := gob.NewDecoder(f).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode gob: %w", err)
	}
	tr := speaker.ForMode(mode)
	rows := make([]Legislator, 0, len(g.Legislators))
	for _, l := range g.Legislators {
		rows = append(rows, canonical(l, tr))
	}
	return New(session, rows, g.Columns), nil
}

// SaveGob serializes rows and their declared columns to path.
func SaveGob(rows []Legislator, columns []string, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gob file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(gobRoster{Columns: columns, Legislators: rows}); err != nil {
		return fmt.Errorf("encode gob: %w", err)
	}
	return nil
}
