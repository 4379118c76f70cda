package resume

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	skillCategoryRE = regexp.MustCompile(`^([A-Za-z\s/&]+?)\s*[:—–-]\s*(.+)$`)
	skillSplitRE    = regexp.MustCompile(`[,;|]`)
	numericRE       = regexp.MustCompile(`^\d+$`)
)

const maxSkills = 10

// ExtractSkills reads the skills section line by line. Only "Category: a, b, c"
// lines contribute; items are de-duplicated case-insensitively keeping the first
// spelling, and at most ten are returned.
func ExtractSkills(text string) []string {
	skills := make([]string, 0)

	lines := splitLines(text)
	start, inline, ok := findSection(lines, skillsHeaderRE)
	if !ok {
		return skills
	}

	span := make([]string, 0)
	if inline != "" {
		span = append(span, inline)
	}
	for _, line := range lines[start+1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isAllCapsHeader(trimmed) {
			break
		}
		span = append(span, trimmed)
	}

	seen := make(map[string]struct{})
	for _, line := range span {
		m := skillCategoryRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		for _, item := range skillSplitRE.Split(m[2], -1) {
			item = strings.TrimSpace(item)
			if utf8.RuneCountInString(item) < 2 || numericRE.MatchString(item) {
				continue
			}

			key := strings.ToLower(item)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			skills = append(skills, item)
			if len(skills) == maxSkills {
				return skills
			}
		}
	}

	return skills
}
