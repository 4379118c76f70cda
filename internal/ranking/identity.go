package ranking

import (
	"strings"

	"github.com/abhatt13/referral-outreach-app/internal/resume"
)

// Placeholders used when neither the resume nor the config names the sender.
const (
	PlaceholderName     = "Your Name"
	PlaceholderEmail    = "your.email@example.com"
	PlaceholderLinkedIn = "https://www.linkedin.com/in/your-profile/"
)

// Identity is the sender information and bullets substituted into templates.
type Identity struct {
	Name     string   `json:"your_name"`
	Email    string   `json:"your_email"`
	LinkedIn string   `json:"your_linkedin"`
	Skills   []string `json:"your_skills"`
}

// IdentityDefaults are used for identity fields the resume did not provide.
type IdentityDefaults struct {
	Name     string `mapstructure:"name"`
	Email    string `mapstructure:"email"`
	LinkedIn string `mapstructure:"linkedin"`
}

// DefaultIdentity returns the literal placeholders shown when nothing is known
// about the sender.
func DefaultIdentity() IdentityDefaults {
	return IdentityDefaults{
		Name:     PlaceholderName,
		Email:    PlaceholderEmail,
		LinkedIn: PlaceholderLinkedIn,
	}
}

// OrPlaceholders fills empty fields of d with the literal placeholders.
func (d IdentityDefaults) OrPlaceholders() IdentityDefaults {
	p := DefaultIdentity()
	return IdentityDefaults{
		Name:     firstNonEmpty(d.Name, p.Name),
		Email:    firstNonEmpty(d.Email, p.Email),
		LinkedIn: firstNonEmpty(d.LinkedIn, p.LinkedIn),
	}
}

// FormatForEmail resolves the sender identity from doc, falling back to defaults,
// and ranks three bullets against the job description.
func (r *Ranker) FormatForEmail(doc resume.ParsedDocument, jobDescription string, defaults IdentityDefaults) Identity {
	defaults = defaults.OrPlaceholders()
	return Identity{
		Name:     firstNonEmpty(doc.Name, defaults.Name),
		Email:    firstNonEmpty(doc.Email, defaults.Email),
		LinkedIn: firstNonEmpty(doc.LinkedIn, defaults.LinkedIn),
		Skills:   r.Rank(doc, jobDescription),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
