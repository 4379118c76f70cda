// Package templates fills email templates with recipient, job and sender details.
//
// A template is plain text whose first "Subject:" line holds the subject; every
// line after it is the body. Placeholders are written as {token} in the subject
// and body, or as [token] in the body only. Unknown placeholders are left as-is.
package templates

import (
	"fmt"
	"strings"

	"github.com/abhatt13/referral-outreach-app/internal/job"
	"github.com/abhatt13/referral-outreach-app/internal/ranking"
)

const subjectPrefix = "Subject:"

const (
	fallbackName  = "there"
	fallbackTitle = "your role"
)

// Recipient is the person an email is addressed to.
type Recipient struct {
	Name      string
	FirstName string
	Email     string
	Title     string
	Company   string
}

// First returns the explicit first name or the first word of Name.
func (r Recipient) First() string {
	if first := strings.TrimSpace(r.FirstName); first != "" {
		return first
	}
	if words := strings.Fields(r.Name); len(words) > 0 {
		return words[0]
	}
	return ""
}

type replacement struct {
	token string
	value string
}

// Split separates a template into subject and body. Lines before the subject line
// are ignored. A template without a subject line is all body.
func Split(template string) (string, string) {
	lines := strings.Split(strings.ReplaceAll(template, "\r\n", "\n"), "\n")
	for i, line := range lines {
		if !strings.HasPrefix(line, subjectPrefix) {
			continue
		}
		subject := strings.TrimSpace(strings.TrimPrefix(line, subjectPrefix))
		body := strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		return subject, body
	}
	return "", strings.TrimSpace(template)
}

// Personalize substitutes recipient, job and sender details into template and
// returns the subject and body.
func Personalize(template string, recipient Recipient, posting job.Posting, identity ranking.Identity) (string, string) {
	subject, body := Split(template)

	for _, r := range replacements(recipient, posting, identity) {
		braced := "{" + r.token + "}"
		subject = strings.ReplaceAll(subject, braced, r.value)
		body = strings.ReplaceAll(body, braced, r.value)
		body = strings.ReplaceAll(body, "["+r.token+"]", r.value)
	}

	return subject, body
}

func replacements(recipient Recipient, posting job.Posting, identity ranking.Identity) []replacement {
	company := strings.TrimSpace(posting.Company)
	if company == "" {
		company = strings.TrimSpace(recipient.Company)
	}

	result := []replacement{
		{token: "first_name", value: orDefault(recipient.First(), fallbackName)},
		{token: "name", value: orDefault(recipient.Name, fallbackName)},
		{token: "recipient_title", value: orDefault(recipient.Title, fallbackTitle)},
		{token: "company", value: company},
		{token: "job_title", value: strings.TrimSpace(posting.JobTitle)},
		{token: "YOUR_NAME", value: identity.Name},
		{token: "YOUR_EMAIL", value: identity.Email},
		{token: "YOUR_LINKEDIN", value: identity.LinkedIn},
	}

	for i := 0; i < ranking.BulletCount; i++ {
		value := fmt.Sprintf("Key skill %d", i+1)
		if i < len(identity.Skills) {
			value = identity.Skills[i]
		}
		result = append(result, replacement{token: fmt.Sprintf("SKILL_%d", i+1), value: value})
	}

	return result
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
