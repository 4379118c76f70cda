package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/abhatt13/referral-outreach-app/internal/contacts"
	"github.com/abhatt13/referral-outreach-app/internal/resume"
)

type missingEmailFilter struct {
	logger *zap.Logger
}

// NewMissingEmail creates a filter that drops contacts without a usable email address.
func NewMissingEmail(logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &missingEmailFilter{logger: logger}
}

func (f *missingEmailFilter) Name() string { return "missing_email" }

func (f *missingEmailFilter) Disable(string) {}

func (f *missingEmailFilter) IsEnabled() bool { return true }

func (f *missingEmailFilter) Validate() error { return nil }

func (f *missingEmailFilter) Apply(_ context.Context, c *contacts.Contacts) (*contacts.Contacts, Step, error) {
	initial := c.Len()

	var dropped []string
	kept := c.Items[:0]
	for _, contact := range c.Items {
		email := strings.TrimSpace(contact.Email)
		if email == "" || resume.ExtractEmail(email) != email {
			dropped = append(dropped, contact.Name)
			continue
		}
		contact.Email = email
		kept = append(kept, contact)
	}
	c.Items = kept

	if len(dropped) > 0 {
		f.logger.Warn("skipping contacts without a valid email",
			zap.Strings("contacts", dropped),
			zap.Int("contacts_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}
