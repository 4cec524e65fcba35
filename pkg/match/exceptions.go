package match

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/floorspeech/pkg/speaker"
)

// Exceptions lists, per session, speaker-fragment substrings whose
// approximate matches are known to be wrong (mostly OCR-split accented names).
type Exceptions map[int][]string

// DefaultExceptions returns the curated table for sessions 115 to 118.
func DefaultExceptions() Exceptions {
	return Exceptions{
		115: {"barraga n"},
		116: {"luja n", "barraga n", "luga n"},
		117: {"barraga n", "c rdenas"},
		118: {"barraga n", "jackson lee", "cline member"},
	}
}

// LoadExceptions reads a YAML mapping of session number to substrings.
func LoadExceptions(path string) (Exceptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read exceptions %s: %w", path, err)
	}
	var ex Exceptions
	if err := yaml.Unmarshal(data, &ex); err != nil {
		return nil, fmt.Errorf("parse exceptions %s: %w", path, err)
	}
	return ex, nil
}

// Excludes reports the listed substring contained in fragment, compared
// case-insensitively after ASCII folding.
func (e Exceptions) Excludes(session int, fragment string) (string, bool) {
	patterns := e[session]
	if len(patterns) == 0 {
		return "", false
	}
	folded := speaker.LowercaseASCII(fragment)
	for _, p := range patterns {
		if p != "" && strings.Contains(folded, speaker.LowercaseASCII(p)) {
			return p, true
		}
	}
	return "", false
}
