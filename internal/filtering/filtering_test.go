package filtering

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhatt13/referral-outreach-app/internal/contacts"
)

type stubStore struct {
	emails  []string
	err     error
	company string
}

func (s *stubStore) ContactedEmails(_ context.Context, company string) ([]string, error) {
	s.company = company
	return s.emails, s.err
}

func sample() *contacts.Contacts {
	return &contacts.Contacts{Items: []*contacts.Contact{
		{Name: "Jane", Email: "jane@acme.io", Company: "Acme"},
		{Name: "No Mail", Email: ""},
		{Name: "Broken", Email: "not-an-email"},
		{Name: "Jane Again", Email: "JANE@acme.io", Company: "Acme"},
		{Name: "Bob", Email: " bob@globex.io ", Company: "Globex"},
		{Name: "Eve", Email: "eve@initech.io", Company: "Initech"},
	}}
}

func TestRunFilters(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exclude.json")
	if err := contacts.AppendToFile(path, &contacts.Contacts{Items: []*contacts.Contact{{Email: "eve@initech.io"}}}); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	store := &stubStore{emails: []string{"bob@globex.io"}}
	f := New([]Filter{
		NewMissingEmail(logger),
		NewDuplicates(),
		NewExcludedCompanies([]string{"hooli"}, logger),
		NewExcludeFile(path, logger),
		NewAlreadyContacted(&AlreadyContactedConfig{Company: "Acme"}, &AlreadyContactedDeps{Store: store, Logger: logger}),
	}, logger)

	got, err := f.RunFilters(context.Background(), sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(got.Emails(), []string{"jane@acme.io"}) {
		t.Fatalf("unexpected contacts left: %v", got.Emails())
	}
	if store.company != "Acme" {
		t.Fatalf("expected store to be queried for Acme, got %q", store.company)
	}
	if n := observed.FilterMessage("filter step").Len(); n != 5 {
		t.Fatalf("expected 5 filter step entries, got %d", n)
	}
}

func TestRunFiltersValidatesFirst(t *testing.T) {
	t.Parallel()

	f := New([]Filter{
		NewDuplicates(),
		NewAlreadyContacted(nil, nil),
	}, nil)

	c := sample()
	if _, err := f.RunFilters(context.Background(), c); err == nil {
		t.Fatalf("expected validation error")
	}
	if c.Len() != 6 {
		t.Fatalf("expected no filter to run before validation, got %d contacts", c.Len())
	}
}

func TestRunFiltersSkipsDisabled(t *testing.T) {
	t.Parallel()

	f := New([]Filter{NewAlreadyContacted(nil, nil)}, nil)
	f.DisableByName("already_contacted", "no database configured")

	got, err := f.RunFilters(context.Background(), sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 6 {
		t.Fatalf("expected all contacts to stay, got %d", got.Len())
	}

	statuses := f.Describe()
	if len(statuses) != 1 || statuses[0].Enabled || statuses[0].Reason != "no database configured" {
		t.Fatalf("unexpected status: %+v", statuses)
	}
}

func TestAlreadyContactedIgnore(t *testing.T) {
	t.Parallel()

	store := &stubStore{err: errors.New("must not be called")}
	filter := NewAlreadyContacted(&AlreadyContactedConfig{Ignore: true}, &AlreadyContactedDeps{Store: store, Logger: zap.NewNop()})

	_, step, err := filter.Apply(context.Background(), sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Dropped != 0 || step.Left != 6 {
		t.Fatalf("unexpected step: %+v", step)
	}
}

func TestAlreadyContactedStoreError(t *testing.T) {
	t.Parallel()

	store := &stubStore{err: errors.New("connection refused")}
	f := New([]Filter{
		NewAlreadyContacted(nil, &AlreadyContactedDeps{Store: store, Logger: zap.NewNop()}),
	}, nil)

	if _, err := f.RunFilters(context.Background(), sample()); err == nil {
		t.Fatalf("expected store error")
	}
}

func TestMissingEmail(t *testing.T) {
	t.Parallel()

	c, step, err := NewMissingEmail(nil).Apply(context.Background(), sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Initial != 6 || step.Dropped != 2 || step.Left != 4 {
		t.Fatalf("unexpected step: %+v", step)
	}
	if c.Items[2].Email != "bob@globex.io" {
		t.Fatalf("expected email to be trimmed, got %q", c.Items[2].Email)
	}
}

func TestExcludedCompaniesEmpty(t *testing.T) {
	t.Parallel()

	_, step, err := NewExcludedCompanies(nil, nil).Apply(context.Background(), sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Dropped != 0 || step.Left != 6 {
		t.Fatalf("unexpected step: %+v", step)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	f := New([]Filter{
		NewDuplicates(),
		NewExcludedCompanies([]string{"Acme", "Hooli"}, nil),
		NewExcludeFile("exclude.json", nil),
	}, nil)

	want := []Status{
		{Name: "duplicates", Enabled: true},
		{Name: "excluded_companies", Enabled: true, Details: map[string]string{"companies": "Acme,Hooli"}},
		{Name: "exclude_file", Enabled: true, Details: map[string]string{"path": "exclude.json"}},
	}
	if got := f.Describe(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected statuses: %+v", got)
	}
}
