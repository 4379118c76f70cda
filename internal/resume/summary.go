package resume

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	yearRE          = regexp.MustCompile(`\d{4}`)
	sentenceSplitRE = regexp.MustCompile(`[.!?]\s+`)
)

const (
	maxSummarySentences = 2
	minEducationLength  = 10
	maxYearLineLength   = 20
)

// ExtractEducation returns the first substantial line of the education section,
// skipping short lines that only carry a date.
func ExtractEducation(text string) string {
	lines := splitLines(text)
	start, inline, ok := findSection(lines, educationHeaderRE)
	if !ok {
		return ""
	}

	candidates := []string{inline}
	prevBlank := false
	for _, line := range lines[start+1:] {
		trimmed := strings.TrimSpace(line)
		if prevBlank && isAllCapsHeader(trimmed) {
			break
		}
		prevBlank = trimmed == ""
		candidates = append(candidates, trimmed)
	}

	for _, line := range candidates {
		if line == "" {
			continue
		}
		n := utf8.RuneCountInString(line)
		if yearRE.MatchString(line) && n < maxYearLineLength {
			continue
		}
		if n > minEducationLength {
			return line
		}
	}

	return ""
}

// ExtractSummary returns the first two sentences of the summary section, each
// terminated by exactly one period.
func ExtractSummary(text string) string {
	lines := splitLines(text)
	start, inline, ok := findSection(lines, summaryHeaderRE)
	if !ok {
		return ""
	}

	span := []string{inline}
	for _, line := range lines[start+1:] {
		if isAllCapsHeader(line) || matchesAny(line, experienceHeaderRE, closingHeaderRE) {
			break
		}
		span = append(span, line)
	}

	summary := collapseWhitespace(strings.Join(span, " "))
	if summary == "" {
		return ""
	}

	sentences := make([]string, 0, maxSummarySentences)
	for _, s := range sentenceSplitRE.Split(summary, -1) {
		s = strings.TrimSpace(strings.TrimRight(s, ".!?"))
		if s == "" {
			continue
		}
		sentences = append(sentences, s)
		if len(sentences) == maxSummarySentences {
			break
		}
	}
	if len(sentences) == 0 {
		return ""
	}

	return strings.Join(sentences, ". ") + "."
}
