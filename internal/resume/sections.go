package resume

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	allCapsHeaderRE = regexp.MustCompile(`^[A-Z][A-Z\s]+$`)
	whitespaceRE    = regexp.MustCompile(`\s+`)

	skillsHeaderRE     = headerPattern("TECHNICAL SKILLS", "CORE COMPETENCIES", "TECHNOLOGIES", "SKILLS")
	experienceHeaderRE = headerPattern("PROFESSIONAL EXPERIENCE", "WORK EXPERIENCE", "EXPERIENCE")
	educationHeaderRE  = headerPattern("EDUCATION")
	summaryHeaderRE    = headerPattern("PROFESSIONAL SUMMARY", "SUMMARY", "PROFILE", "OBJECTIVE", "ABOUT ME", "ABOUT")

	// Headers that close the experience and summary sections.
	closingHeaderRE = headerPattern("EDUCATION", "TECHNICAL SKILLS", "SKILLS", "PROJECTS")
)

// headerPattern builds a matcher for a section header that sits on its own line.
// Matching is case-insensitive and tolerates a trailing separator followed by
// inline content ("Skills: Python, Go"), captured in group 1.
func headerPattern(names ...string) *regexp.Regexp {
	alternatives := make([]string, len(names))
	for i, name := range names {
		alternatives[i] = strings.ReplaceAll(regexp.QuoteMeta(name), " ", `\s+`)
	}
	return regexp.MustCompile(`(?i)^\s*(?:` + strings.Join(alternatives, "|") + `)\s*(?:[:\-–—]\s*(.*?))?\s*$`)
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// findSection returns the index of the first line matching header together with
// any content that follows the header on the same line.
func findSection(lines []string, header *regexp.Regexp) (int, string, bool) {
	for i, line := range lines {
		m := header.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		return i, strings.TrimSpace(m[1]), true
	}
	return 0, "", false
}

func isAllCapsHeader(line string) bool {
	return allCapsHeaderRE.MatchString(strings.TrimSpace(line))
}

func matchesAny(line string, headers ...*regexp.Regexp) bool {
	for _, h := range headers {
		if h.MatchString(line) {
			return true
		}
	}
	return false
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
