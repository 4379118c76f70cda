package contacts

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeXLSX(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetList()[0]
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save xlsx: %v", err)
	}
}

func TestLoadXLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "contacts.xlsx")
	writeXLSX(t, path, [][]interface{}{
		{"Name", "Email", "Job Title", "Company", "LinkedIn URL"},
		{"Jane Doe", "jane@acme.io", "Engineering Manager", "Acme", "https://linkedin.com/in/jane"},
		{"", "", "", "", ""},
		{"John Roe", "john@acme.io", "Recruiter", "Acme"},
	})

	contacts, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if contacts.Len() != 2 {
		t.Fatalf("expected 2 contacts, got %d", contacts.Len())
	}

	want := &Contact{
		Name:     "Jane Doe",
		Email:    "jane@acme.io",
		Title:    "Engineering Manager",
		Company:  "Acme",
		LinkedIn: "https://linkedin.com/in/jane",
	}
	if !reflect.DeepEqual(contacts.Items[0], want) {
		t.Fatalf("unexpected first contact: %+v", contacts.Items[0])
	}
	if contacts.Items[1].Email != "john@acme.io" || contacts.Items[1].LinkedIn != "" {
		t.Fatalf("unexpected second contact: %+v", contacts.Items[1])
	}
}

func TestLoadCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "contacts.csv")
	content := "\ufefffirst_name, last-name ,E-Mail,Position,organization,unused\n" +
		"Ada,Lovelace,ada@engines.io,CTO,Analytical Engines,x\n" +
		",,,,,\n" +
		"Grace,,grace@navy.mil\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	contacts, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contacts.Len() != 2 {
		t.Fatalf("expected 2 contacts, got %d", contacts.Len())
	}

	ada := contacts.Items[0]
	if ada.Name != "Ada Lovelace" || ada.FirstName != "Ada" || ada.Email != "ada@engines.io" ||
		ada.Title != "CTO" || ada.Company != "Analytical Engines" {
		t.Fatalf("unexpected contact: %+v", ada)
	}
	if grace := contacts.Items[1]; grace.Name != "Grace" || grace.Email != "grace@navy.mil" {
		t.Fatalf("unexpected contact: %+v", grace)
	}
}

func TestLoadUnsupported(t *testing.T) {
	t.Parallel()

	_, err := Load("contacts.json")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadEmptyCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	contacts, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contacts.Len() != 0 || contacts.Items == nil {
		t.Fatalf("expected empty non-nil contacts, got %+v", contacts)
	}
}

func TestExclude(t *testing.T) {
	t.Parallel()

	contacts := &Contacts{Items: []*Contact{
		{Email: "a@acme.io", Company: "Acme"},
		{Email: "b@globex.io", Company: "Globex"},
		{Email: "c@acme.io", Company: " acme "},
		{Email: "d@none.io"},
	}}

	excluded := contacts.Exclude(ContactCompanyField, []string{"ACME", ""})
	if !reflect.DeepEqual(excluded, []string{"a@acme.io", "c@acme.io"}) {
		t.Fatalf("unexpected excluded: %v", excluded)
	}
	if !reflect.DeepEqual(contacts.Emails(), []string{"b@globex.io", "d@none.io"}) {
		t.Fatalf("unexpected remaining: %v", contacts.Emails())
	}

	if got := contacts.Exclude(ContactEmailField, nil); got != nil {
		t.Fatalf("expected nothing excluded, got %v", got)
	}
}

func TestWhereAndFind(t *testing.T) {
	t.Parallel()

	contacts := &Contacts{Items: []*Contact{
		{Email: "keep@acme.io", Title: "CTO"},
		{Email: "drop@acme.io"},
	}}

	dropped := contacts.Where(func(c *Contact) bool { return c.Title != "" })
	if !reflect.DeepEqual(dropped, []string{"drop@acme.io"}) {
		t.Fatalf("unexpected dropped: %v", dropped)
	}
	if contacts.FindByEmail("KEEP@acme.io") == nil {
		t.Fatalf("expected case-insensitive lookup to find contact")
	}
	if contacts.FindByEmail("drop@acme.io") != nil {
		t.Fatalf("expected dropped contact to be gone")
	}
}

func TestRecipient(t *testing.T) {
	t.Parallel()

	c := &Contact{Name: "Jane Doe", FirstName: "Jane", Email: "jane@acme.io", Title: "CTO", Company: "Acme"}
	r := c.Recipient()
	if r.Name != "Jane Doe" || r.First() != "Jane" || r.Email != "jane@acme.io" || r.Title != "CTO" || r.Company != "Acme" {
		t.Fatalf("unexpected recipient: %+v", r)
	}
}

func TestExcludeFileRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exclude.json")

	missing, err := GetExcludedFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error for missing file: %v", err)
	}
	if len(missing.Items) != 0 {
		t.Fatalf("expected empty list for missing file")
	}

	first := &Contacts{Items: []*Contact{{Email: "a@acme.io", Name: "A", Company: "Acme"}}}
	if err := AppendToFile(path, first); err != nil {
		t.Fatalf("append: %v", err)
	}
	second := &Contacts{Items: []*Contact{{Email: "b@acme.io"}}}
	if err := AppendToFile(path, second); err != nil {
		t.Fatalf("append: %v", err)
	}

	excluded, err := GetExcludedFromFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(excluded.Emails(), []string{"a@acme.io", "b@acme.io"}) {
		t.Fatalf("unexpected emails: %v", excluded.Emails())
	}
	if excluded.Items[0].Company != "Acme" || excluded.Items[0].ExcludedAt.IsZero() {
		t.Fatalf("unexpected entry: %+v", excluded.Items[0])
	}

	// Rewriting a shorter list must not leave trailing bytes behind.
	if err := (&ExcludedContacts{}).ToFile(path); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if strings.TrimSpace(string(data)) != `{
  "Items": null
}` {
		t.Fatalf("unexpected file content: %s", data)
	}
}

func TestReportByCompany(t *testing.T) {
	t.Parallel()

	contacts := &Contacts{Items: []*Contact{
		{Name: "Jane", Email: "jane@acme.io", Title: "CTO", Company: "Acme"},
		{Name: "Bob", Email: "bob@acme.io", Company: "Acme "},
		{Name: "Eve", Email: "eve@nowhere.io"},
	}}

	report := contacts.ReportByCompany()
	if len(report["Acme"]) != 2 || report["Acme"][0]["title"] != "CTO" {
		t.Fatalf("unexpected Acme entries: %v", report["Acme"])
	}
	if len(report["unknown"]) != 1 || report["unknown"][0]["email"] != "eve@nowhere.io" {
		t.Fatalf("unexpected unknown entries: %v", report["unknown"])
	}
}
