package filtering

import (
	"context"
	"strings"

	"github.com/abhatt13/referral-outreach-app/internal/contacts"
)

type duplicatesFilter struct{}

// NewDuplicates creates a filter that keeps only the first contact per email address.
func NewDuplicates() Filter {
	return &duplicatesFilter{}
}

func (f *duplicatesFilter) Name() string { return "duplicates" }

func (f *duplicatesFilter) Disable(string) {}

func (f *duplicatesFilter) IsEnabled() bool { return true }

func (f *duplicatesFilter) Validate() error { return nil }

func (f *duplicatesFilter) Apply(_ context.Context, c *contacts.Contacts) (*contacts.Contacts, Step, error) {
	initial := c.Len()
	seen := make(map[string]struct{}, initial)

	c.Where(func(contact *contacts.Contact) bool {
		key := strings.ToLower(strings.TrimSpace(contact.Email))
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
		return true
	})

	return c, Step{Initial: initial, Dropped: initial - c.Len(), Left: c.Len()}, nil
}
