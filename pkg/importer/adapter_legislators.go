// CLAUDE:SUMMARY Adapters for the congress-legislators feeds: current members as YAML, historical members as JSON.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/floorspeech/pkg/roster"
)

const feedLicense = "CC0-1.0"

func init() {
	Register(&currentAdapter{})
	Register(&historicalAdapter{})
}

type currentAdapter struct{}

func (a *currentAdapter) ID() string          { return "legislators-current" }
func (a *currentAdapter) Description() string { return "Members of the current Congress (YAML)" }
func (a *currentAdapter) DefaultURL() string {
	return "https://theunitedstates.io/congress-legislators/legislators-current.yaml"
}
func (a *currentAdapter) License() string { return feedLicense }

func (a *currentAdapter) Fetch(ctx context.Context, sourceURL string) ([]roster.FeedLegislator, error) {
	data, err := fetchFeed(ctx, sourceURL, "legislators-current.yaml")
	if err != nil {
		return nil, err
	}
	var feed []roster.FeedLegislator
	if err := yaml.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("decode yaml feed: %w", err)
	}
	return feed, nil
}

type historicalAdapter struct{}

func (a *historicalAdapter) ID() string          { return "legislators-historical" }
func (a *historicalAdapter) Description() string { return "Former members of Congress (JSON)" }
func (a *historicalAdapter) DefaultURL() string {
	return "https://theunitedstates.io/congress-legislators/legislators-historical.json"
}
func (a *historicalAdapter) License() string { return feedLicense }

func (a *historicalAdapter) Fetch(ctx context.Context, sourceURL string) ([]roster.FeedLegislator, error) {
	data, err := fetchFeed(ctx, sourceURL, "legislators-historical.json")
	if err != nil {
		return nil, err
	}
	var feed []roster.FeedLegislator
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("decode json feed: %w", err)
	}
	return feed, nil
}

// fetchFeed downloads sourceURL into a scratch directory and returns its bytes.
func fetchFeed(ctx context.Context, sourceURL, name string) ([]byte, error) {
	dlDir, err := os.MkdirTemp("", "floorspeech-feed-")
	if err != nil {
		return nil, fmt.Errorf("scratch dir: %w", err)
	}
	defer os.RemoveAll(dlDir)

	dest := filepath.Join(dlDir, name)
	if err := downloadFile(ctx, sourceURL, dest); err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	return os.ReadFile(dest)
}
