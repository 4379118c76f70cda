package mailer

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-sasl"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type captured struct {
	addr string
	from string
	to   []string
	data string
	tls  bool
}

func stubSend(t *testing.T, err error) *captured {
	t.Helper()

	c := &captured{}
	origPlain, origTLS := sendMail, sendMailTLS
	t.Cleanup(func() {
		sendMail, sendMailTLS = origPlain, origTLS
	})

	record := func(tls bool) func(string, sasl.Client, string, []string, io.Reader) error {
		return func(addr string, _ sasl.Client, from string, to []string, r io.Reader) error {
			data, readErr := io.ReadAll(r)
			if readErr != nil {
				t.Fatalf("read body: %v", readErr)
			}
			c.addr, c.from, c.to, c.data, c.tls = addr, from, to, string(data), tls
			return err
		}
	}
	sendMail = record(false)
	sendMailTLS = record(true)
	return c
}

func TestBuild(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	got := Build(Message{
		To:      "jane@acme.io",
		From:    "me@example.com",
		Subject: "Referral for Data Engineer",
		Body:    "Hi Jane,\nThanks!",
	}, date)

	want := "From: me@example.com\r\n" +
		"To: jane@acme.io\r\n" +
		"Subject: Referral for Data Engineer\r\n" +
		"Date: Fri, 01 Mar 2024 10:00:00 +0000\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		"Hi Jane,\r\nThanks!\r\n"
	if got != want {
		t.Fatalf("unexpected message:\n%q\nwant:\n%q", got, want)
	}
}

func TestBuildEncodesNonASCIISubject(t *testing.T) {
	t.Parallel()

	got := Build(Message{Subject: "Café role"}, time.Now())
	if !strings.Contains(got, "Subject: =?utf-8?q?") {
		t.Fatalf("expected encoded subject, got %q", got)
	}
}

func TestNewSMTPRequiresConfig(t *testing.T) {
	t.Parallel()

	for _, cfg := range []*Config{nil, {}, {Host: "smtp.example.com", Port: 587}} {
		if _, err := NewSMTP(cfg, nil); !errors.Is(err, ErrNotConfigured) {
			t.Fatalf("expected ErrNotConfigured for %+v, got %v", cfg, err)
		}
	}
}

func TestSMTPSend(t *testing.T) {
	c := stubSend(t, nil)

	s, err := NewSMTP(&Config{Host: "smtp.example.com", Port: 587, User: "me@example.com", Password: "secret"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.Send(context.Background(), Message{To: "jane@acme.io", Subject: "Hello", Body: "Hi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.addr != "smtp.example.com:587" || c.from != "me@example.com" || c.tls {
		t.Fatalf("unexpected call: %+v", c)
	}
	if len(c.to) != 1 || c.to[0] != "jane@acme.io" {
		t.Fatalf("unexpected recipients: %v", c.to)
	}
	if !strings.Contains(c.data, "From: me@example.com\r\n") || !strings.HasSuffix(c.data, "\r\n\r\nHi\r\n") {
		t.Fatalf("unexpected data: %q", c.data)
	}
}

func TestSMTPSendTLSAndFrom(t *testing.T) {
	c := stubSend(t, nil)

	s, err := NewSMTP(&Config{Host: "smtp.example.com", Port: 465, User: "user", From: "Me <me@example.com>", TLS: true}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Send(context.Background(), Message{To: "jane@acme.io"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.tls || c.from != "Me <me@example.com>" {
		t.Fatalf("unexpected call: %+v", c)
	}
}

func TestSMTPSendError(t *testing.T) {
	stubSend(t, errors.New("535 authentication failed"))

	core, observed := observer.New(zapcore.ErrorLevel)
	s, err := NewSMTP(&Config{Host: "smtp.example.com", Port: 587, User: "user"}, zap.New(core))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = s.Send(context.Background(), Message{To: "jane@acme.io"})
	if err == nil || !strings.Contains(err.Error(), "authentication failed") {
		t.Fatalf("expected send error, got %v", err)
	}
	if observed.FilterMessage("sending email failed").Len() != 1 {
		t.Fatalf("expected failure to be logged")
	}
}

func TestSMTPSendCancelled(t *testing.T) {
	c := stubSend(t, nil)

	s, err := NewSMTP(&Config{Host: "smtp.example.com", Port: 587, User: "user"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Send(ctx, Message{To: "jane@acme.io"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if c.addr != "" {
		t.Fatalf("expected nothing to be sent")
	}
}

func TestDryRun(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)
	d := NewDryRun(zap.New(core))

	if err := d.Send(context.Background(), Message{To: "jane@acme.io", Subject: "Hi", Body: "Body"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.Send(context.Background(), Message{To: " "}); !errors.Is(err, ErrNoRecipient) {
		t.Fatalf("expected ErrNoRecipient, got %v", err)
	}

	if len(d.Sent) != 1 || d.Sent[0].To != "jane@acme.io" {
		t.Fatalf("unexpected sent messages: %+v", d.Sent)
	}
	entries := observed.FilterMessage("dry run: email not sent").All()
	if len(entries) != 1 || entries[0].ContextMap()["subject"] != "Hi" {
		t.Fatalf("unexpected log entries: %+v", entries)
	}
}
