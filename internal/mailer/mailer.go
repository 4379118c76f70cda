// Package mailer delivers rendered outreach emails.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/abhatt13/referral-outreach-app/internal/utils"
)

var (
	ErrNotConfigured = errors.New("smtp is not configured")
	ErrNoRecipient   = errors.New("message has no recipient")
)

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Message struct {
	To      string
	From    string
	Subject string
	Body    string
}

type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"-"`
	From     string `mapstructure:"from"`
	TLS      bool   `mapstructure:"tls"`
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) sender() string {
	if c.From != "" {
		return c.From
	}
	return c.User
}

// SMTP sends messages through an authenticated SMTP relay.
type SMTP struct {
	config *Config
	logger *zap.Logger
	now    func() time.Time
}

// Replaced in tests.
var (
	sendMail    = smtp.SendMail
	sendMailTLS = smtp.SendMailTLS
)

func NewSMTP(cfg *Config, logger *zap.Logger) (*SMTP, error) {
	if cfg == nil || cfg.Host == "" || cfg.Port == 0 || cfg.User == "" {
		return nil, ErrNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTP{config: cfg, logger: logger, now: time.Now}, nil
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before sending email: %w", err)
	}
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	if msg.From == "" {
		msg.From = s.config.sender()
	}

	auth := sasl.NewPlainClient("", s.config.User, s.config.Password)
	body := strings.NewReader(Build(msg, s.now()))

	send := sendMail
	if s.config.TLS {
		send = sendMailTLS
	}

	if err := send(s.config.Addr(), auth, msg.From, []string{msg.To}, body); err != nil {
		s.logger.Error("sending email failed", zap.String("to", msg.To), zap.Error(err))
		return fmt.Errorf("sending email to %s: %w", msg.To, err)
	}

	s.logger.Debug("email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// Build renders msg as an RFC 5322 plain text message.
func Build(msg Message, date time.Time) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("From: %s\r\n", msg.From))
	builder.WriteString(fmt.Sprintf("To: %s\r\n", msg.To))
	builder.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject)))
	builder.WriteString(fmt.Sprintf("Date: %s\r\n", date.Format(time.RFC1123Z)))
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	builder.WriteString("\r\n")

	body := strings.ReplaceAll(msg.Body, "\r\n", "\n")
	builder.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	builder.WriteString("\r\n")

	return builder.String()
}

// DryRun logs messages instead of sending them.
type DryRun struct {
	logger *zap.Logger
	Sent   []Message
}

func NewDryRun(logger *zap.Logger) *DryRun {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DryRun{logger: logger}
}

func (d *DryRun) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}

	d.Sent = append(d.Sent, msg)
	d.logger.Info("dry run: email not sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", utils.TruncateForLog(msg.Body, 200)),
	)
	return nil
}
