package resume

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	bulletSplitRE = regexp.MustCompile(`\n\s*[•·∙○▪●]\s*`)
	dateRangeRE   = regexp.MustCompile(`(?i)\d{4}\s*[-–—]\s*(?:\d{4}|Present|Current)`)
	jobTitleRE    = regexp.MustCompile(`^[A-Z][a-z\s,&]+(?:\||\bat\b|@)`)
)

const (
	maxBullets         = 5
	minBulletLength    = 60
	maxTitleLineLength = 60
)

// ExtractExperience returns up to five achievement bullets from the experience
// section. Wrapped bullet lines are joined; lines that look like headers, date
// ranges or "Title at Company" end the current bullet.
func ExtractExperience(text string) []string {
	bullets := make([]string, 0)

	lines := splitLines(text)
	start, inline, ok := findSection(lines, experienceHeaderRE)
	if !ok {
		return bullets
	}

	span := []string{inline}
	for _, line := range lines[start+1:] {
		if endsExperience(line) {
			break
		}
		span = append(span, line)
	}

	for _, chunk := range bulletSplitRE.Split(strings.Join(span, "\n"), -1) {
		bullet := collectBullet(chunk)
		if utf8.RuneCountInString(bullet) < minBulletLength {
			continue
		}

		bullets = append(bullets, bullet)
		if len(bullets) == maxBullets {
			break
		}
	}

	return bullets
}

func endsExperience(line string) bool {
	if closingHeaderRE.MatchString(line) {
		return true
	}

	// All-caps lines such as "EDUCATION & CERTIFICATIONS" or "KEY PROJECTS".
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.ToUpper(trimmed) != trimmed {
		return false
	}
	for _, word := range []string{"EDUCATION", "SKILLS", "PROJECTS"} {
		if strings.Contains(trimmed, word) {
			return true
		}
	}
	return false
}

func collectBullet(chunk string) string {
	parts := make([]string, 0)
	for _, line := range strings.Split(strings.TrimLeftFunc(chunk, unicode.IsSpace), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || endsBullet(line) {
			break
		}
		parts = append(parts, line)
	}
	if len(parts) == 0 {
		return ""
	}
	return capitalizeFirst(collapseWhitespace(strings.Join(parts, " ")))
}

func endsBullet(line string) bool {
	switch {
	case allCapsHeaderRE.MatchString(line):
		return true
	case dateRangeRE.MatchString(line):
		return true
	case jobTitleRE.MatchString(line) && utf8.RuneCountInString(line) < maxTitleLineLength:
		return true
	}
	return false
}
