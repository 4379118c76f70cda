package contacts

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"
)

// ExcludedContacts is the on-disk list of people that must not be written to
// again.
type ExcludedContacts struct {
	Items []*ExcludedContact
}

type ExcludedContact struct {
	Email      string
	Name       string
	Company    string
	ExcludedAt time.Time
}

func (c *Contacts) ToExcluded() *ExcludedContacts {
	excluded := &ExcludedContacts{}
	now := time.Now().UTC()
	for _, contact := range c.Items {
		excluded.Items = append(excluded.Items, &ExcludedContact{
			Email:      contact.Email,
			Name:       contact.Name,
			Company:    contact.Company,
			ExcludedAt: now,
		})
	}
	return excluded
}

// GetExcludedFromFile reads an exclude file. A missing or empty file is an empty
// list.
func GetExcludedFromFile(path string) (*ExcludedContacts, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExcludedContacts{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedContacts{}, nil
	}

	var excluded ExcludedContacts
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedContacts) Append(s *ExcludedContacts) {
	e.Items = append(e.Items, s.Items...)
}

func (e *ExcludedContacts) Emails() []string {
	emails := make([]string, 0, len(e.Items))
	for _, contact := range e.Items {
		emails = append(emails, contact.Email)
	}
	return emails
}

func (e *ExcludedContacts) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// AppendToFile adds contacts to the exclude file at path, creating it if needed.
func AppendToFile(path string, c *Contacts) error {
	excluded, err := GetExcludedFromFile(path)
	if err != nil {
		return err
	}
	excluded.Append(c.ToExcluded())
	return excluded.ToFile(path)
}
