package contacts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported contacts file format")

// Header spellings accepted in addition to the canonical column names.
var headerAliases = map[string]string{
	"full_name":        "name",
	"contact_name":     "name",
	"email_address":    "email",
	"e_mail":           "email",
	"job_title":        "title",
	"position":         "title",
	"company_name":     "company",
	"organization":     "company",
	"linkedin_url":     "linkedin",
	"linkedin_profile": "linkedin",
	"firstname":        "first_name",
	"lastname":         "last_name",
}

// Load reads contacts from an .xlsx or .csv file with a header row. Rows without
// any value are skipped.
func Load(path string) (*Contacts, error) {
	var (
		rows [][]string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	return decodeRows(rows)
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheets[0], path, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return parseCSV(file)
}

func parseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	return rows, nil
}

func decodeRows(rows [][]string) (*Contacts, error) {
	contacts := &Contacts{Items: make([]*Contact, 0)}
	if len(rows) == 0 {
		return contacts, nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = normalizeHeader(h)
	}

	for n, row := range rows[1:] {
		record := make(map[string]interface{}, len(headers))
		empty := true
		for i, key := range headers {
			if key == "" || i >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[i])
			if value != "" {
				empty = false
			}
			record[key] = value
		}
		if empty {
			continue
		}

		contact := &Contact{}
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           contact,
			TagName:          "mapstructure",
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(record); err != nil {
			return nil, fmt.Errorf("decoding contact on row %d: %w", n+2, err)
		}

		if contact.Name == "" {
			contact.Name = strings.TrimSpace(contact.FirstName + " " + contact.LastName)
		}
		contacts.Items = append(contacts.Items, contact)
	}

	return contacts, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	if alias, ok := headerAliases[h]; ok {
		return alias
	}
	return h
}
