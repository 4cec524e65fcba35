// CLAUDE:SUMMARY Ordered cleanup rules that turn raw Congressional Record page text into segmentable prose.
package record

import (
	"regexp"
	"strings"
)

// SpeakerBreak marks a paragraph break that always ends a speech.
const SpeakerBreak = "<SPEAKER_BREAK>"

// rule is one substitution step of the normalizer.
type rule struct {
	name  string
	apply func(string) string
}

func replaceRule(name, expr, repl string) rule {
	re := regexp.MustCompile(expr)
	return rule{name: name, apply: func(s string) string { return re.ReplaceAllString(s, repl) }}
}

// Order matters: the break marker must be placed before whitespace is collapsed.
var normalizeRules = []rule{
	replaceRule("speaker_break", `\nf\s\n`, " "+SpeakerBreak+" "),
	{name: "collapse_space", apply: collapseSpace},
	{name: "bare_newline", apply: dropBareNewlines},
	replaceRule("hyphen_rejoin", `([\p{L}\p{N}_])-\s+([\p{L}\p{N}_])`, "${1}${2}"),
	replaceRule("spaced_dash", `[\x{2013}\x{2014}]\s`, " - "),
	{name: "punctuation", apply: strings.NewReplacer(
		"\u201c", `"`, "\u201d", `"`,
		"\u2018", "'", "\u2019", "'",
		"\u2013", "-", "\u2014", "-",
		"\u2026", "...",
	).Replace},
	replaceRule("imprint", `Jkt \d{6} PO \d{5} Frm \d{5} Fmt \d{4} Sfmt \d{4}`, ""),
	replaceRule("file_stamp", `E:\\CR\\FM\\[A-Z0-9.]+ [A-Z0-9]+`, ""),
	replaceRule("operator_stamp", `DMWilson on DSKJM0X7X2PROD with`, ""),
	replaceRule("verdate", `VerDate \w+ \d{2} \d{4} \d{2}:\d{2} \w+ \d{2}, \d{4}`, ""),
	replaceRule("section_header", `\b(CONGRESSIONAL|RECORD|HOUSE|DAILY|DIGEST)\b`, ""),
	replaceRule("recycled_paper", `Pdnted on recycled papfil`, ""),
	{name: "tidy", apply: collapseSpace},
}

var spaceRun = regexp.MustCompile(`[\s\p{Z}]+`)

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// dropBareNewlines replaces every newline that does not follow sentence-ending
// punctuation with a space.
func dropBareNewlines(s string) string {
	if !strings.Contains(s, "\n") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	var prev byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\n' && prev != '.' && prev != '!' && prev != '?' {
			b.WriteByte(' ')
		} else {
			b.WriteByte(c)
		}
		prev = c
	}
	return b.String()
}

// maxPasses bounds the fixpoint loop; real pages settle in two.
const maxPasses = 8

// Normalize applies the cleanup rules in order, repeating the whole list
// until the text stops changing. It is a pure function and Normalize of its
// own output returns it unchanged.
func Normalize(raw string) string {
	s := raw
	for range maxPasses {
		next := s
		for _, r := range normalizeRules {
			next = r.apply(next)
		}
		if next == s {
			break
		}
		s = next
	}
	return s
}

// NormalizeRules returns the rule names in application order.
func NormalizeRules() []string {
	names := make([]string, len(normalizeRules))
	for i, r := range normalizeRules {
		names[i] = r.name
	}
	return names
}
