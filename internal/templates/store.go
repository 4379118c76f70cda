package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/abhatt13/referral-outreach-app/internal/job"
	"github.com/abhatt13/referral-outreach-app/internal/ranking"
)

// Kind names one of the two emails of a campaign. The value is also stored as the
// email type of a sent message.
type Kind string

const (
	Initial  Kind = "initial"
	Followup Kind = "followup"
)

const (
	defaultDir      = "templates"
	defaultInitial  = "initial_email.txt"
	defaultFollowup = "followup_email.txt"

	previewRule = 60
)

// ErrTemplateNotFound is returned when a template file does not exist.
var ErrTemplateNotFound = errors.New("template not found")

// Config names the template directory and the file used for each kind.
type Config struct {
	Dir      string `mapstructure:"dir"`
	Initial  string `mapstructure:"initial"`
	Followup string `mapstructure:"followup"`
}

// Store reads templates from a directory.
type Store struct {
	cfg Config
}

// NewStore returns a Store, defaulting to templates/initial_email.txt and
// templates/followup_email.txt.
func NewStore(cfg Config) *Store {
	if strings.TrimSpace(cfg.Dir) == "" {
		cfg.Dir = defaultDir
	}
	if strings.TrimSpace(cfg.Initial) == "" {
		cfg.Initial = defaultInitial
	}
	if strings.TrimSpace(cfg.Followup) == "" {
		cfg.Followup = defaultFollowup
	}
	return &Store{cfg: cfg}
}

// Path returns the file backing kind.
func (s *Store) Path(kind Kind) (string, error) {
	switch kind {
	case Initial:
		return filepath.Join(s.cfg.Dir, s.cfg.Initial), nil
	case Followup:
		return filepath.Join(s.cfg.Dir, s.cfg.Followup), nil
	default:
		return "", fmt.Errorf("unknown template kind %q", kind)
	}
}

// Load returns the raw template text for kind.
func (s *Store) Load(kind Kind) (string, error) {
	path, err := s.Path(kind)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return "", fmt.Errorf("reading template %s: %w", path, err)
	}

	return string(data), nil
}

// Render loads the template for kind and personalizes it.
func (s *Store) Render(kind Kind, recipient Recipient, posting job.Posting, identity ranking.Identity) (string, string, error) {
	template, err := s.Load(kind)
	if err != nil {
		return "", "", err
	}

	subject, body := Personalize(template, recipient, posting, identity)
	return subject, body, nil
}

// Preview renders kind for recipient in a human readable form.
func (s *Store) Preview(kind Kind, recipient Recipient, posting job.Posting, identity ranking.Identity) (string, error) {
	subject, body, err := s.Render(kind, recipient, posting, identity)
	if err != nil {
		return "", err
	}
	return FormatPreview(recipient.Email, subject, body), nil
}

// FormatPreview lays out an email for the terminal: recipient, subject, a rule
// and the body.
func FormatPreview(to, subject, body string) string {
	if strings.TrimSpace(to) == "" {
		to = "N/A"
	}

	var b strings.Builder
	b.WriteString("To: " + to + "\n")
	b.WriteString("Subject: " + subject + "\n")
	b.WriteString("\n" + strings.Repeat("-", previewRule) + "\n\n")
	b.WriteString(body)
	return b.String()
}
