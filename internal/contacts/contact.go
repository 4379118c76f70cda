// Package contacts loads the people a campaign writes to.
package contacts

import (
	"strings"

	"github.com/abhatt13/referral-outreach-app/internal/templates"
)

const (
	ContactEmailField   = "Email"
	ContactCompanyField = "Company"
)

type Contacts struct {
	Items []*Contact
}

type Contact struct {
	Name      string `mapstructure:"name" json:"name,omitempty"`
	FirstName string `mapstructure:"first_name" json:"first_name,omitempty"`
	LastName  string `mapstructure:"last_name" json:"last_name,omitempty"`
	Email     string `mapstructure:"email" json:"email"`
	Title     string `mapstructure:"title" json:"title,omitempty"`
	Company   string `mapstructure:"company" json:"company,omitempty"`
	LinkedIn  string `mapstructure:"linkedin" json:"linkedin,omitempty"`
}

// Recipient converts the contact into the shape templates are rendered for.
func (c *Contact) Recipient() templates.Recipient {
	return templates.Recipient{
		Name:      c.Name,
		FirstName: c.FirstName,
		Email:     c.Email,
		Title:     c.Title,
		Company:   c.Company,
	}
}

func (c *Contact) GetStringField(name string) string {
	switch name {
	case ContactEmailField:
		return c.Email
	case ContactCompanyField:
		return c.Company
	default:
		return ""
	}
}

func (c *Contacts) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

func (c *Contacts) Emails() []string {
	emails := make([]string, 0, c.Len())
	for _, contact := range c.Items {
		emails = append(emails, contact.Email)
	}
	return emails
}

func (c *Contacts) FindByEmail(email string) *Contact {
	for _, contact := range c.Items {
		if strings.EqualFold(contact.Email, email) {
			return contact
		}
	}
	return nil
}

// Exclude removes every contact whose field matches one of targets,
// case-insensitively, and returns the emails of the removed contacts. The order
// of the remaining contacts is kept.
func (c *Contacts) Exclude(name string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		if n := normalize(t); n != "" {
			set[n] = struct{}{}
		}
	}

	var excluded []string
	kept := c.Items[:0]
	for _, contact := range c.Items {
		if _, ok := set[normalize(contact.GetStringField(name))]; ok {
			excluded = append(excluded, contact.Email)
			continue
		}
		kept = append(kept, contact)
	}
	c.Items = kept

	return excluded
}

// Where keeps only the contacts keep returns true for and returns the emails of
// the dropped ones.
func (c *Contacts) Where(keep func(*Contact) bool) []string {
	var dropped []string
	kept := c.Items[:0]
	for _, contact := range c.Items {
		if keep(contact) {
			kept = append(kept, contact)
			continue
		}
		dropped = append(dropped, contact.Email)
	}
	c.Items = kept
	return dropped
}

// ReportByCompany groups contacts by company. Contacts without a company are
// listed under "unknown".
func (c *Contacts) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, contact := range c.Items {
		key := strings.TrimSpace(contact.Company)
		if key == "" {
			key = "unknown"
		}
		report[key] = append(report[key], map[string]string{
			"name":  contact.Name,
			"email": contact.Email,
			"title": contact.Title,
		})
	}
	return report
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
