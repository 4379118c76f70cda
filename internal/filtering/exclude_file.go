package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhatt13/referral-outreach-app/internal/contacts"
)

type excludeFileFilter struct {
	path   string
	logger *zap.Logger
}

// NewExcludeFile creates a filter that removes contacts listed in the exclude file.
func NewExcludeFile(path string, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &excludeFileFilter{
		path:   path,
		logger: logger,
	}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate() error { return nil }

func (f *excludeFileFilter) Apply(_ context.Context, c *contacts.Contacts) (*contacts.Contacts, Step, error) {
	if f.path == "" {
		return noop(c)
	}

	initial := c.Len()
	excluded, err := contacts.GetExcludedFromFile(f.path)
	if err != nil {
		return c, Step{}, fmt.Errorf("getting excluded contacts from file: %w", err)
	}

	removed := c.Exclude(contacts.ContactEmailField, excluded.Emails())
	if len(removed) > 0 {
		f.logger.Info("excluding contacts based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_contacts", removed),
			zap.Int("contacts_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
