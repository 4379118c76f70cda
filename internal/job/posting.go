// Package job extracts the company and title from a pasted job description.
package job

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Posting is the job a campaign targets. Company and JobTitle are empty when they
// could not be detected.
type Posting struct {
	Company     string `json:"company,omitempty" mapstructure:"company"`
	JobTitle    string `json:"job_title,omitempty" mapstructure:"title"`
	Description string `json:"description" mapstructure:"description"`
}

var (
	companyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)(?:\bat|@)\s+([A-Z][A-Za-z0-9\s&.,]+?)\s+(?:is|are|seeks|looking)\b`),
		regexp.MustCompile(`(?im)Company:[ \t]*([A-Z][A-Za-z0-9 \t&.,]+)`),
		regexp.MustCompile(`(?im)^([A-Z][A-Za-z0-9\s&.,]+?)\s+(?:is|are)\s+(?:hiring|seeking|looking)\b`),
	}
	legalSuffixRE = regexp.MustCompile(`,?\s+(?:Inc\.?|LLC|Ltd\.?|Corporation|Corp\.?)$`)

	titlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)(?:Position|Role|Title):\s*(.+?)\s*$`),
		regexp.MustCompile(`(?im)\b(?:hiring|seeking)\s+an?\s+(.+?)(?:\s+to\b|\s+at\b|$)`),
	}
	titleSuffixRE = regexp.MustCompile(`(?i)\s+(?:position|role|opportunity)$`)

	commonTitles = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Software Engineer`),
		regexp.MustCompile(`(?i)Senior Software Engineer`),
		regexp.MustCompile(`(?i)Staff Engineer`),
		regexp.MustCompile(`(?i)Engineering Manager`),
		regexp.MustCompile(`(?i)Product Manager`),
		regexp.MustCompile(`(?i)Data Scientist`),
		regexp.MustCompile(`(?i)Frontend Developer`),
		regexp.MustCompile(`(?i)Backend Developer`),
		regexp.MustCompile(`(?i)Full[- ]?Stack Developer`),
		regexp.MustCompile(`(?i)DevOps Engineer`),
		regexp.MustCompile(`(?i)Machine Learning Engineer`),
		regexp.MustCompile(`(?i)Tech Lead`),
	}
)

const (
	fallbackLines       = 5
	fallbackMaxWords    = 5
	commonTitleWindow   = 500
	minFallbackLineSize = 4
)

// Parse extracts the company and title from a job description. The description
// itself is kept trimmed.
func Parse(text string) Posting {
	return Posting{
		Company:     ExtractCompany(text),
		JobTitle:    ExtractTitle(text),
		Description: strings.TrimSpace(text),
	}
}

// Manual builds a posting from user-entered values.
func Manual(company, title, description string) Posting {
	return Posting{
		Company:     strings.TrimSpace(company),
		JobTitle:    strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
	}
}

// Valid reports whether the posting names a company, the minimum needed to run a
// campaign.
func (p Posting) Valid() bool {
	return strings.TrimSpace(p.Company) != ""
}

// Override replaces the company and title with the non-empty values given.
func (p Posting) Override(company, title string) Posting {
	if c := strings.TrimSpace(company); c != "" {
		p.Company = c
	}
	if t := strings.TrimSpace(title); t != "" {
		p.JobTitle = t
	}
	return p
}

func ExtractCompany(text string) string {
	for _, re := range companyPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		company := strings.TrimSpace(m[1])
		return strings.TrimSpace(legalSuffixRE.ReplaceAllString(company, ""))
	}

	lines := strings.Split(text, "\n")
	if len(lines) > fallbackLines {
		lines = lines[:fallbackLines]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if looksLikeCompany(line) {
			return line
		}
	}

	return ""
}

func looksLikeCompany(line string) bool {
	if utf8.RuneCountInString(line) < minFallbackLineSize {
		return false
	}
	first, _ := utf8.DecodeRuneInString(line)
	if !unicode.IsUpper(first) {
		return false
	}

	words := strings.Fields(line)
	if len(words) > fallbackMaxWords {
		return false
	}
	for _, w := range words {
		switch strings.ToLower(w) {
		case "and", "the", "of", "&":
			continue
		}
		r, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func ExtractTitle(text string) string {
	for _, re := range titlePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		title := strings.TrimSpace(m[1])
		return strings.TrimSpace(titleSuffixRE.ReplaceAllString(title, ""))
	}

	window := text
	if runes := []rune(text); len(runes) > commonTitleWindow {
		window = string(runes[:commonTitleWindow])
	}
	for _, re := range commonTitles {
		if match := re.FindString(window); match != "" {
			return match
		}
	}

	return ""
}
