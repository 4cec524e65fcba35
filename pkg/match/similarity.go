// CLAUDE:SUMMARY Pluggable 0..100 string similarity; default WeightedRatio blends edit-distance, token-sort, token-set and partial ratios.
package match

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Similarity scores two strings from 0 (unrelated) to 100 (identical).
type Similarity interface {
	Score(a, b string) int
}

// SimilarityFunc adapts a plain function to Similarity.
type SimilarityFunc func(a, b string) int

// Score calls f(a, b).
func (f SimilarityFunc) Score(a, b string) int { return f(a, b) }

// WeightedRatio picks the best of several ratios, discounting the token and
// partial variants so a full-string match always ranks first.
type WeightedRatio struct{}

// Score implements Similarity.
func (WeightedRatio) Score(a, b string) int {
	a, b = process(a), process(b)
	if a == "" || b == "" {
		return 0
	}

	base := ratio(a, b)
	la, lb := len([]rune(a)), len([]rune(b))
	lenRatio := float64(max(la, lb)) / float64(min(la, lb))

	if lenRatio < 1.5 {
		return round(math.Max(base, math.Max(
			tokenSortRatio(a, b, ratio)*0.95,
			tokenSetRatio(a, b, ratio)*0.95,
		)))
	}

	scale := 0.9
	if lenRatio > 8 {
		scale = 0.6
	}
	return round(math.Max(base, math.Max(
		partialRatio(a, b)*scale,
		math.Max(
			tokenSortRatio(a, b, partialRatio)*0.95*scale,
			tokenSetRatio(a, b, partialRatio)*0.95*scale,
		),
	)))
}

// process lowercases and replaces everything but letters and digits with spaces.
func process(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// ratio is 100 * (1 - distance / longest length).
func ratio(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(d)/float64(longest))
}

// partialRatio is the best ratio of the shorter string against every window
// of the same length in the longer one.
func partialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}
	s := string(short)
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		if r := ratio(s, string(long[i:i+len(short)])); r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

func sortedTokens(s string) string {
	toks := strings.Fields(s)
	sort.Strings(toks)
	return strings.Join(toks, " ")
}

func tokenSortRatio(a, b string, score func(a, b string) float64) float64 {
	return score(sortedTokens(a), sortedTokens(b))
}

// tokenSetRatio compares the shared tokens against each side's full token set.
func tokenSetRatio(a, b string, score func(a, b string) float64) float64 {
	setA, setB := tokenSet(a), tokenSet(b)
	var common, onlyA, onlyB []string
	for t := range setA {
		if setB[t] {
			common = append(common, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range setB {
		if !setA[t] {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(common, " ")
	withA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	withB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := score(withA, withB)
	if base != "" {
		best = math.Max(best, math.Max(score(base, withA), score(base, withB)))
	}
	return best
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(s) {
		set[t] = true
	}
	return set
}

func round(f float64) int {
	return int(math.Round(f))
}
