// Package normalizer canonicalizes raw clinical note text and pulls
// calendar dates out of it.
package normalizer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var punctuation = strings.NewReplacer(
	"\u2018", "'", "\u2019", "'", "\u201a", "'", "\u201b", "'",
	"\u201c", `"`, "\u201d", `"`, "\u201e", `"`, "\u201f", `"`,
	"\u2013", "-", "\u2014", "-",
	"\u2026", "...",
	"\u00a0", " ", "\u202f", " ",
)

var (
	blankRunRegex  = regexp.MustCompile(`\n{3,}`)
	spaceRunRegex  = regexp.MustCompile(`[ \t\f\v]+`)
	lineTrimCutset = " \t\f\v"
)

// Normalize returns the canonical form of text: ASCII punctuation, LF line
// endings, no trailing whitespace per line, at most one blank line between
// paragraphs, single spaces, trimmed ends. Normalize(Normalize(s)) equals
// Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = stripInvisible(text)
	text = punctuation.Replace(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, lineTrimCutset)
	}
	text = strings.Join(lines, "\n")

	text = blankRunRegex.ReplaceAllString(text, "\n\n")
	text = spaceRunRegex.ReplaceAllString(text, " ")

	return strings.Trim(text, lineTrimCutset+"\n")
}

// NormalizeValue accepts arbitrary input and never fails: anything that is
// not text normalizes to the empty string.
func NormalizeValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return Normalize(val)
	case []byte:
		return Normalize(string(val))
	case fmt.Stringer:
		return Normalize(val.String())
	default:
		return ""
	}
}

// stripInvisible drops zero-width/format characters that EHR copy-paste
// leaves behind and composes decomposed accents.
func stripInvisible(text string) string {
	t := transform.Chain(runes.Remove(runes.In(unicode.Cf)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}
