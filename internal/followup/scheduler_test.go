package followup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhatt13/referral-outreach-app/internal/contacts"
	"github.com/abhatt13/referral-outreach-app/internal/mailer"
	"github.com/abhatt13/referral-outreach-app/internal/ranking"
	"github.com/abhatt13/referral-outreach-app/internal/resume"
	"github.com/abhatt13/referral-outreach-app/internal/storage"
	"github.com/abhatt13/referral-outreach-app/internal/templates"
)

type fakeStore struct {
	due      []storage.DueFollowup
	dueErr   error
	asked    time.Time
	logs     []storage.EmailLog
	marked   []int64
	markErr  error
	logErr   error
	dueCalls int
}

func (f *fakeStore) DueFollowups(_ context.Context, now time.Time) ([]storage.DueFollowup, error) {
	f.dueCalls++
	f.asked = now
	return f.due, f.dueErr
}

func (f *fakeStore) LogEmail(_ context.Context, l storage.EmailLog) (int64, error) {
	if f.logErr != nil {
		return 0, f.logErr
	}
	f.logs = append(f.logs, l)
	return int64(len(f.logs)), nil
}

func (f *fakeStore) MarkFollowupSent(_ context.Context, id int64) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, id)
	return nil
}

type failingSender struct {
	fail map[string]error
	sent []mailer.Message
}

func (f *failingSender) Send(_ context.Context, msg mailer.Message) error {
	if err, ok := f.fail[msg.To]; ok {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newRenderer(t *testing.T) *templates.Store {
	t.Helper()

	dir := t.TempDir()
	content := "Subject: Following up on {job_title}\n\nHi {first_name}, checking in about {company}.\n{SKILL_1}"
	if err := os.WriteFile(filepath.Join(dir, "followup_email.txt"), []byte(content), 0o600); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return templates.NewStore(templates.Config{Dir: dir})
}

func sampleResume() resume.ParsedDocument {
	return resume.ParsedDocument{
		Name: "Sam Sender",
		Experience: []string{
			"Led a team of five engineers shipping a customer facing billing product on time",
			"Built Spark and Databricks pipelines that process two terabytes of events every day",
			"Designed React dashboards used by the sales organisation to track weekly revenue",
		},
	}
}

func dueItem(logID, campaignID int64, email, description string) storage.DueFollowup {
	return storage.DueFollowup{
		LogID:     logID,
		ContactID: logID * 10,
		Contact:   contacts.Contact{Name: "Jane Doe", Email: email, Company: "Acme"},
		Campaign: storage.Campaign{
			ID:             campaignID,
			JobTitle:       "Data Engineer",
			Company:        "Acme",
			JobDescription: description,
		},
	}
}

func TestRunOnce(t *testing.T) {
	t.Parallel()

	store := &fakeStore{due: []storage.DueFollowup{
		dueItem(1, 3, "jane@acme.io", "We need Spark and Databricks experience"),
		dueItem(2, 4, "bob@acme.io", "Frontend role with React"),
	}}
	sender := &failingSender{}

	s, err := New(Config{From: "sam@example.com"}, Deps{
		Store:    store,
		Sender:   sender,
		Renderer: newRenderer(t),
		Resume:   sampleResume(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fixed := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	result, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Due != 2 || result.Sent != 2 || result.Failed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !store.asked.Equal(fixed) {
		t.Fatalf("expected due follow-ups to be queried at %s, got %s", fixed, store.asked)
	}

	first := sender.sent[0]
	if first.Subject != "Following up on Data Engineer" || first.From != "sam@example.com" {
		t.Fatalf("unexpected message: %+v", first)
	}
	if want := "Hi Jane, checking in about Acme.\n" + sampleResume().Experience[1]; first.Body != want {
		t.Fatalf("expected bullets ranked against the campaign, got %q", first.Body)
	}
	if want := "Hi Jane, checking in about Acme.\n" + sampleResume().Experience[2]; sender.sent[1].Body != want {
		t.Fatalf("expected bullets ranked against the second campaign, got %q", sender.sent[1].Body)
	}

	if len(store.logs) != 2 || store.logs[0].Type != storage.EmailFollowup || !store.logs[0].IsSent || store.logs[0].ContactID != 10 {
		t.Fatalf("unexpected logs: %+v", store.logs)
	}
	if len(store.marked) != 2 || store.marked[0] != 1 || store.marked[1] != 2 {
		t.Fatalf("unexpected marked logs: %v", store.marked)
	}
}

func TestRunOnceFailedSendIsNotMarked(t *testing.T) {
	t.Parallel()

	store := &fakeStore{due: []storage.DueFollowup{dueItem(1, 3, "jane@acme.io", "")}}
	sender := &failingSender{fail: map[string]error{"jane@acme.io": errors.New("421 try again later")}}

	s, err := New(Config{}, Deps{Store: store, Sender: sender, Renderer: newRenderer(t)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Sent != 0 || result.Failed != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(store.marked) != 0 {
		t.Fatalf("failed follow-up must not be marked")
	}
	if len(store.logs) != 1 || store.logs[0].IsSent || store.logs[0].ErrorMessage != "421 try again later" {
		t.Fatalf("unexpected logs: %+v", store.logs)
	}
}

func TestRunOnceNothingDue(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)
	s, err := New(Config{}, Deps{Store: &fakeStore{}, Sender: &failingSender{}, Renderer: newRenderer(t), Logger: zap.New(core)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Due != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if observed.FilterMessage("no follow-ups needed at this time").Len() != 1 {
		t.Fatalf("expected idle pass to be logged")
	}
}

func TestRunOnceMarkError(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		due:     []storage.DueFollowup{dueItem(1, 3, "jane@acme.io", "")},
		markErr: storage.ErrNotFound,
	}
	s, err := New(Config{}, Deps{Store: store, Sender: &failingSender{}, Renderer: newRenderer(t)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.RunOnce(context.Background()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	store := &fakeStore{dueErr: errors.New("database is down")}
	core, observed := observer.New(zapcore.ErrorLevel)
	s, err := New(Config{CheckInterval: time.Millisecond}, Deps{
		Store:    store,
		Sender:   &failingSender{},
		Renderer: newRenderer(t),
		Logger:   zap.New(core),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.dueCalls < 2 {
		t.Fatalf("expected the scheduler to retry after a failed pass, got %d calls", store.dueCalls)
	}
	if observed.FilterMessage("follow-up pass failed").Len() == 0 {
		t.Fatalf("expected failed pass to be logged")
	}
}

func TestNewRequiresDeps(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}, Deps{}); err == nil {
		t.Fatalf("expected error for missing deps")
	}
}

func TestIdentityUsesDefaults(t *testing.T) {
	t.Parallel()

	store := &fakeStore{due: []storage.DueFollowup{dueItem(1, 3, "jane@acme.io", "")}}
	sender := &failingSender{}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "followup_email.txt"), []byte("Subject: Hi\n\n[YOUR_NAME] [YOUR_EMAIL]"), 0o600); err != nil {
		t.Fatalf("write template: %v", err)
	}

	s, err := New(Config{Identity: ranking.IdentityDefaults{Email: "sam@example.com"}}, Deps{
		Store:    store,
		Sender:   sender,
		Renderer: templates.NewStore(templates.Config{Dir: dir}),
		Resume:   resume.ParsedDocument{Name: "Sam Sender"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sender.sent[0].Body != "Sam Sender sam@example.com" {
		t.Fatalf("unexpected body: %q", sender.sent[0].Body)
	}
}

func TestRunOnceMarksBeforeLogging(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.ErrorLevel)
	store := &fakeStore{
		due:    []storage.DueFollowup{dueItem(7, 3, "jane@acme.io", "")},
		logErr: errors.New("disk full"),
	}
	sender := &failingSender{}

	s, err := New(Config{}, Deps{Store: store, Sender: sender, Renderer: newRenderer(t), Logger: zap.New(core)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected log error")
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected the follow-up to be delivered, got %d", len(sender.sent))
	}
	if len(store.marked) != 1 || store.marked[0] != 7 {
		t.Fatalf("expected original 7 to be marked, got %v", store.marked)
	}
	if observed.FilterMessage("follow-up sent but not logged").Len() != 1 {
		t.Fatalf("expected an error entry, got %v", observed.All())
	}
}
