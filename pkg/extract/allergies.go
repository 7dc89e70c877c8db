package extract

import (
	"regexp"
	"strings"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

const NoKnownAllergies = "NKDA"

var (
	allergyHeaderRegex   = regexp.MustCompile(`(?i)^\s*(?:allergies|allergy|drug allergies|allergies and reactions|adverse reactions)\s*(?::\s*(.*))?$`)
	nkdaRegex            = regexp.MustCompile(`(?i)\b(?:nkda|nka|no known (?:drug )?allergies)\b`)
	allergicToRegex      = regexp.MustCompile(`(?i)\ballergic to ([a-z][a-z\- ]*?)(?:\s*\(([^)]+)\))?(?:[,.;]|\s+(?:with|causing|which)\b|$)`)
	allergyReactionRegex = regexp.MustCompile(`^(.+?)\s*(?:\(([^)]+)\)|\s-\s*(.+)|:\s*(.+))$`)
	noneRegex            = regexp.MustCompile(`(?i)^(?:none|no allergies|n/a)\.?$`)
	headerLikeRegex      = regexp.MustCompile(`^\s*[A-Za-z][A-Za-z /&()]{0,40}:(?:\s|$)`)
)

// ExtractAllergies reads allergy header lines (inline content plus the
// lines beneath them up to a blank line or the next header), NKDA
// mentions and "allergic to X" phrases anywhere in text.
func ExtractAllergies(text string) []models.Allergy {
	var out []models.Allergy
	seen := make(map[string]bool)
	add := func(a models.Allergy) {
		a.Substance = strings.TrimSpace(a.Substance)
		a.Reaction = strings.TrimSpace(a.Reaction)
		if a.Substance == "" {
			return
		}
		key := strings.ToLower(a.Substance)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, a)
	}

	for _, block := range headedBlocks(text, allergyHeaderRegex) {
		for _, item := range splitItems(block) {
			if nkdaRegex.MatchString(item) || noneRegex.MatchString(item) {
				add(models.Allergy{Substance: NoKnownAllergies})
				continue
			}
			add(parseAllergy(item))
		}
	}
	for _, m := range allergicToRegex.FindAllStringSubmatch(text, -1) {
		add(models.Allergy{Substance: m[1], Reaction: m[2]})
	}
	if len(out) == 0 && nkdaRegex.MatchString(text) {
		add(models.Allergy{Substance: NoKnownAllergies})
	}
	return out
}

func parseAllergy(item string) models.Allergy {
	if m := allergyReactionRegex.FindStringSubmatch(item); m != nil {
		reaction := m[2]
		if reaction == "" {
			reaction = m[3]
		}
		if reaction == "" {
			reaction = m[4]
		}
		return models.Allergy{Substance: m[1], Reaction: reaction}
	}
	return models.Allergy{Substance: item}
}

// headedBlocks returns, for every line matching header, its inline content
// joined with the following lines until a blank line or another header.
func headedBlocks(text string, header *regexp.Regexp) []string {
	lines := strings.Split(text, "\n")
	var blocks []string
	for i := 0; i < len(lines); i++ {
		m := header.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		var parts []string
		if len(m) > 1 && strings.TrimSpace(m[1]) != "" {
			parts = append(parts, strings.TrimSpace(m[1]))
		}
		for i+1 < len(lines) {
			next := lines[i+1]
			if strings.TrimSpace(next) == "" || headerLikeRegex.MatchString(next) || header.MatchString(next) {
				break
			}
			parts = append(parts, strings.TrimSpace(next))
			i++
		}
		if len(parts) > 0 {
			blocks = append(blocks, strings.Join(parts, "\n"))
		}
	}
	return blocks
}

// splitItems splits a block on newlines, commas and semicolons, stripping
// list markers.
func splitItems(block string) []string {
	var items []string
	for _, line := range strings.Split(block, "\n") {
		line = listPrefixRegex.ReplaceAllString(line, "")
		for _, part := range strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ';' }) {
			if part = strings.TrimSpace(strings.TrimRight(part, ".")); part != "" {
				items = append(items, part)
			}
		}
	}
	return items
}
