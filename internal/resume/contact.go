package resume

import (
	"regexp"
	"strings"
)

var (
	emailRE    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRE    = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	linkedInRE = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/in/[\w-]+`)

	// Labels some resumes put in front of the candidate name.
	namePrefixRE = regexp.MustCompile(`(?i)^(?:Curriculum Vitae|Resume|CV)\b[\s:-]*`)
)

const maxNameWords = 4

// ExtractEmail returns the first email address found in text.
func ExtractEmail(text string) string {
	return emailRE.FindString(text)
}

// ExtractPhone returns the first phone-like span exactly as it appears in text.
// The result is not normalized and is not guaranteed to be dialable.
func ExtractPhone(text string) string {
	return strings.TrimSpace(phoneRE.FindString(text))
}

// ExtractLinkedIn returns the first linkedin.com/in/ profile URL, always with an
// https:// scheme.
func ExtractLinkedIn(text string) string {
	url := linkedInRE.FindString(text)
	if url == "" {
		return ""
	}

	lower := strings.ToLower(url)
	switch {
	case strings.HasPrefix(lower, "https://"):
		return "https://" + url[len("https://"):]
	case strings.HasPrefix(lower, "http://"):
		return "https://" + url[len("http://"):]
	default:
		return "https://" + url
	}
}

// ExtractName treats the first non-blank line as the candidate name when it looks
// like one: one to four words, no email address and no link.
func ExtractName(text string) string {
	for _, line := range splitLines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		candidate := strings.TrimSpace(namePrefixRE.ReplaceAllString(line, ""))
		words := strings.Fields(candidate)
		if len(words) == 0 || len(words) > maxNameWords {
			return ""
		}
		if strings.Contains(candidate, "@") || strings.Contains(strings.ToLower(candidate), "http") {
			return ""
		}

		return candidate
	}

	return ""
}
