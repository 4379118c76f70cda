package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/abhatt13/referral-outreach-app/internal/contacts"
)

type companiesFilter struct {
	companies []string
	logger    *zap.Logger
}

// NewExcludedCompanies creates a filter that removes contacts working at the configured companies.
func NewExcludedCompanies(companies []string, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &companiesFilter{
		companies: companies,
		logger:    logger,
	}
}

func (f *companiesFilter) Name() string { return "excluded_companies" }

func (f *companiesFilter) Disable(string) {}

func (f *companiesFilter) IsEnabled() bool { return true }

func (f *companiesFilter) Validate() error { return nil }

func (f *companiesFilter) Apply(_ context.Context, c *contacts.Contacts) (*contacts.Contacts, Step, error) {
	if len(f.companies) == 0 {
		return noop(c)
	}

	initial := c.Len()
	excluded := c.Exclude(contacts.ContactCompanyField, f.companies)
	if len(excluded) > 0 {
		f.logger.Info("excluding contacts by company",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_contacts", excluded),
			zap.Int("contacts_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
