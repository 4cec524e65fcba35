package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/hazyhaar/floorspeech/pkg/speaker"
)

// Columns derived from alternative roster layouts.
const (
	colSortName = "sort_name"
	colArea     = "area"
)

// LoadRoster reads a manifest.yaml then data.gob, or the declared CSV file
// when no gob is present.
func LoadRoster(dir string) (*Roster, error) {
	manifest, err := LoadManifest(filepath.Join(dir, "manifest.yaml"))
	if err != nil {
		return nil, err
	}

	var r *Roster
	gobPath := filepath.Join(dir, "data.gob")
	if _, statErr := os.Stat(gobPath); statErr == nil {
		r, err = loadGob(gobPath, manifest.Session, manifest.Format.Normalize)
	} else {
		r, err = loadCSV(filepath.Join(dir, manifest.DataFile), manifest)
	}
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", manifest.ID, err)
	}
	r.Manifest = manifest
	if err := r.RequireColumns(RequiredColumns...); err != nil {
		return nil, fmt.Errorf("roster %s: %w", manifest.ID, err)
	}
	return r, nil
}

func loadCSV(path string, m *Manifest) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if enc := m.Format.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		reader = transform.NewReader(f, e.NewDecoder())
	}

	cr := csv.NewReader(reader)
	if delim := m.Format.Delimiter; delim != "" {
		cr.Comma = []rune(delim)[0]
	}
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	rename := make(map[string]string, len(m.Columns))
	for _, c := range m.Columns {
		rename[c.Column] = c.Name
	}
	present := make(map[string]bool, len(header))
	for i := range header {
		h := strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
		if name, ok := rename[h]; ok {
			h = name
		}
		header[i] = h
		present[h] = true
	}

	splitSortName := present[colSortName]
	deriveState := !present[ColState] && present[colArea]

	tr := speaker.ForMode(m.Format.Normalize)
	var rows []Legislator
	var skipped int
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		l := Legislator{Extra: map[string]string{}}
		for i, h := range header {
			if i >= len(rec) {
				break
			}
			v := strings.TrimSpace(rec[i])
			switch h {
			case ColName:
				l.Name = v
			case ColFirstName:
				l.FirstName = v
			case ColLastName:
				l.LastName = v
			case ColState:
				l.State = v
			case ColSessions:
				l.Sessions = parseSessions(v)
			default:
				l.Extra[h] = v
			}
		}
		if splitSortName {
			last, first, _ := strings.Cut(l.Extra[colSortName], ", ")
			l.LastName, l.FirstName = last, first
		}
		if deriveState {
			area, _, _ := strings.Cut(l.Extra[colArea], "'s")
			l.State = area
		}

		l = canonical(l, tr)
		if err := validate.Struct(&l); err != nil {
			skipped++
			slog.Debug("skip roster row", "file", path, "line", line, "error", err)
			continue
		}
		rows = append(rows, l)
	}
	if skipped > 0 {
		slog.Warn("invalid roster rows skipped", "roster", m.ID, "skipped", skipped)
	}

	columns := make([]string, 0, len(present)+2)
	for c := range present {
		columns = append(columns, c)
	}
	if splitSortName {
		columns = append(columns, ColFirstName, ColLastName)
	}
	if deriveState {
		columns = append(columns, ColState)
	}
	return New(m.Session, rows, columns), nil
}

// parseSessions accepts "[117, 118]", "117;118" or "117 118".
func parseSessions(s string) []int {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		if n, err := strconv.Atoi(f); err == nil {
			out = append(out, n)
		}
	}
	return out
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
