package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/floorspeech/pkg/roster"
)

// fakeAdapter implements Adapter for test seeding.
type fakeAdapter struct {
	id, desc, url, license string
	feed                   []roster.FeedLegislator
	fetched                []string
}

func (f *fakeAdapter) ID() string          { return f.id }
func (f *fakeAdapter) Description() string { return f.desc }
func (f *fakeAdapter) DefaultURL() string  { return f.url }
func (f *fakeAdapter) License() string     { return f.license }
func (f *fakeAdapter) Fetch(_ context.Context, url string) ([]roster.FeedLegislator, error) {
	f.fetched = append(f.fetched, url)
	return f.feed, nil
}

func tempSourceDB(t *testing.T) *SourceDB {
	t.Helper()
	dir := t.TempDir()
	sdb, err := OpenSourceDB(filepath.Join(dir, "sources.db"))
	if err != nil {
		t.Fatalf("OpenSourceDB: %v", err)
	}
	t.Cleanup(func() { sdb.Close() })
	return sdb
}

func TestOpenSourceDB_CreatesTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	sdb, err := OpenSourceDB(path)
	if err != nil {
		t.Fatalf("OpenSourceDB: %v", err)
	}
	defer sdb.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file not created: %v", err)
	}

	// Verify the table exists by listing (should return empty).
	sources, err := sdb.ListSources()
	if err != nil {
		t.Fatalf("ListSources on empty db: %v", err)
	}
	if len(sources) != 0 {
		t.Fatalf("expected 0 sources, got %d", len(sources))
	}
}

func TestSeedAndGetURL(t *testing.T) {
	sdb := tempSourceDB(t)

	adapters := []Adapter{
		&fakeAdapter{id: "a1", desc: "desc1", url: "https://example.com/a1", license: "CC0"},
		&fakeAdapter{id: "a2", desc: "desc2", url: "https://example.com/a2", license: "MIT"},
	}

	if err := sdb.Seed(adapters); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	url, err := sdb.GetURL("a1")
	if err != nil {
		t.Fatalf("GetURL: %v", err)
	}
	if url != "https://example.com/a1" {
		t.Fatalf("expected https://example.com/a1, got %s", url)
	}

	// Seed again should not overwrite.
	modified := []Adapter{
		&fakeAdapter{id: "a1", desc: "desc1", url: "https://changed.com/a1", license: "CC0"},
	}
	if err := sdb.Seed(modified); err != nil {
		t.Fatalf("Seed again: %v", err)
	}

	url, err = sdb.GetURL("a1")
	if err != nil {
		t.Fatalf("GetURL after re-seed: %v", err)
	}
	if url != "https://example.com/a1" {
		t.Fatalf("re-seed should not overwrite, got %s", url)
	}
}

func TestSetURL(t *testing.T) {
	sdb := tempSourceDB(t)

	adapters := []Adapter{
		&fakeAdapter{id: "a1", desc: "desc1", url: "https://example.com/original", license: "CC0"},
	}
	if err := sdb.Seed(adapters); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	if err := sdb.SetURL("a1", "https://example.com/updated"); err != nil {
		t.Fatalf("SetURL: %v", err)
	}

	url, err := sdb.GetURL("a1")
	if err != nil {
		t.Fatalf("GetURL: %v", err)
	}
	if url != "https://example.com/updated" {
		t.Fatalf("expected updated URL, got %s", url)
	}
}

func TestSetURL_NotFound(t *testing.T) {
	sdb := tempSourceDB(t)

	err := sdb.SetURL("nonexistent", "https://example.com")
	if err == nil {
		t.Fatal("expected error for nonexistent adapter")
	}
}

func TestUpdateCheck(t *testing.T) {
	sdb := tempSourceDB(t)

	adapters := []Adapter{
		&fakeAdapter{id: "a1", desc: "desc1", url: "https://example.com/a1", license: "CC0"},
	}
	if err := sdb.Seed(adapters); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	if err := sdb.UpdateCheck("a1", 200, ""); err != nil {
		t.Fatalf("UpdateCheck: %v", err)
	}

	sources, err := sdb.ListSources()
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
	src := sources[0]
	if src.LastStatus == nil || *src.LastStatus != 200 {
		t.Fatalf("expected last_status=200, got %v", src.LastStatus)
	}
	if src.LastCheck == nil || *src.LastCheck == 0 {
		t.Fatal("expected last_check to be set")
	}
	if src.LastError != nil {
		t.Fatalf("expected nil last_error, got %v", *src.LastError)
	}

	// Now with an error.
	if err := sdb.UpdateCheck("a1", 404, "not found"); err != nil {
		t.Fatalf("UpdateCheck with error: %v", err)
	}

	sources, _ = sdb.ListSources()
	src = sources[0]
	if src.LastStatus == nil || *src.LastStatus != 404 {
		t.Fatalf("expected last_status=404, got %v", src.LastStatus)
	}
	if src.LastError == nil || *src.LastError != "not found" {
		t.Fatalf("expected last_error='not found', got %v", src.LastError)
	}
}

func TestListSources_Order(t *testing.T) {
	sdb := tempSourceDB(t)

	adapters := []Adapter{
		&fakeAdapter{id: "z-last", desc: "desc1", url: "https://example.com/z", license: "CC0"},
		&fakeAdapter{id: "a-first", desc: "desc2", url: "https://example.com/a", license: "MIT"},
	}
	if err := sdb.Seed(adapters); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	sources, err := sdb.ListSources()
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].AdapterID != "a-first" {
		t.Fatalf("expected first source to be 'a-first', got %s", sources[0].AdapterID)
	}
}

func TestRecordImport(t *testing.T) {
	sdb := tempSourceDB(t)
	if err := sdb.Seed([]Adapter{&fakeAdapter{id: "a1", desc: "desc1", url: "https://example.com/a1", license: "CC0"}}); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := sdb.RecordImport("a1", 541); err != nil {
		t.Fatalf("RecordImport: %v", err)
	}
	sources, err := sdb.ListSources()
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	src := sources[0]
	if src.LastCount == nil || *src.LastCount != 541 {
		t.Fatalf("expected last_count=541, got %v", src.LastCount)
	}
	if src.LastImport == nil || *src.LastImport == 0 {
		t.Fatal("expected last_import to be set")
	}
}
