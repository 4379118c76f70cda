package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/abhatt13/referral-outreach-app/internal/contacts"
)

const forceFlagSetMsg = "force flag is set"

// ContactedStore reports who already received an initial email about a company.
type ContactedStore interface {
	ContactedEmails(ctx context.Context, company string) ([]string, error)
}

type AlreadyContactedConfig struct {
	Ignore  bool
	Company string
}

type AlreadyContactedDeps struct {
	Store  ContactedStore
	Logger *zap.Logger
}

type alreadyContactedFilter struct {
	deps     *AlreadyContactedDeps
	ignore   bool
	company  string
	disabled bool
	reason   string
}

// NewAlreadyContacted creates a filter that removes contacts already written to
// about the same company.
func NewAlreadyContacted(cfg *AlreadyContactedConfig, deps *AlreadyContactedDeps) Filter {
	f := &alreadyContactedFilter{deps: deps}
	if cfg != nil {
		f.ignore = cfg.Ignore
		f.company = cfg.Company
	}
	return f
}

func (f *alreadyContactedFilter) Name() string { return "already_contacted" }

func (f *alreadyContactedFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *alreadyContactedFilter) IsEnabled() bool { return !f.disabled }

func (f *alreadyContactedFilter) Validate() error {
	if f.deps == nil || f.deps.Store == nil {
		return fmt.Errorf("contact store is required")
	}

	if f.deps.Logger == nil {
		return fmt.Errorf("logger is required")
	}

	return nil
}

func (f *alreadyContactedFilter) Apply(ctx context.Context, c *contacts.Contacts) (*contacts.Contacts, Step, error) {
	if f.ignore {
		f.deps.Logger.Info("ignoring already contacted people", zap.String("reason", forceFlagSetMsg))
		return noop(c)
	}

	initial := c.Len()
	emails, err := f.deps.Store.ContactedEmails(ctx, f.company)
	if err != nil {
		return c, Step{}, fmt.Errorf("get contacted emails: %w", err)
	}

	excluded := c.Exclude(contacts.ContactEmailField, emails)
	if len(excluded) > 0 {
		f.deps.Logger.Info("excluding contacts already emailed",
			zap.String("company", f.company),
			zap.Strings("excluded_contacts", excluded),
			zap.Int("contacts_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *alreadyContactedFilter) Status() Status {
	details := map[string]string{
		"exclude_contacted": strconv.FormatBool(!f.ignore),
	}
	reason := f.reason
	if f.ignore && reason == "" {
		reason = "skip requested via flag"
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: reason, Details: details}
}
