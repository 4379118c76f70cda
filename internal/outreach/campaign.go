// Package outreach runs a campaign: one personalized initial email per contact.
package outreach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhatt13/referral-outreach-app/internal/contacts"
	"github.com/abhatt13/referral-outreach-app/internal/job"
	"github.com/abhatt13/referral-outreach-app/internal/logger"
	"github.com/abhatt13/referral-outreach-app/internal/mailer"
	"github.com/abhatt13/referral-outreach-app/internal/ranking"
	"github.com/abhatt13/referral-outreach-app/internal/storage"
	"github.com/abhatt13/referral-outreach-app/internal/templates"
	"github.com/abhatt13/referral-outreach-app/internal/utils"
)

const (
	DefaultFollowupDelay = 24 * time.Hour
	DefaultPause         = 2 * time.Second
)

type Store interface {
	CreateCampaign(ctx context.Context, c storage.Campaign) (int64, error)
	UpsertContact(ctx context.Context, c *contacts.Contact) (int64, error)
	LogEmail(ctx context.Context, l storage.EmailLog) (int64, error)
}

type Renderer interface {
	Render(kind templates.Kind, recipient templates.Recipient, posting job.Posting, identity ranking.Identity) (string, string, error)
}

// Config controls the sender address and pacing of a campaign.
type Config struct {
	From          string
	FollowupDelay time.Duration
	// Pause between two sends.
	Pause time.Duration
}

// Deps are the collaborators a Runner sends and records through.
type Deps struct {
	Store    Store
	Sender   mailer.Sender
	Renderer Renderer
	Logger   *zap.Logger
}

// Result counts the deliveries of one campaign run.
type Result struct {
	CampaignID int64
	Sent       int
	Failed     int
}

type Runner struct {
	cfg    Config
	deps   Deps
	logger *zap.Logger
	now    func() time.Time
}

// NewRunner validates deps and fills config defaults.
func NewRunner(cfg Config, deps Deps) (*Runner, error) {
	if deps.Store == nil {
		return nil, errors.New("campaign store is required")
	}
	if deps.Sender == nil {
		return nil, errors.New("email sender is required")
	}
	if deps.Renderer == nil {
		return nil, errors.New("template renderer is required")
	}
	if cfg.FollowupDelay <= 0 {
		cfg.FollowupDelay = DefaultFollowupDelay
	}
	if cfg.Pause < 0 {
		cfg.Pause = 0
	}

	return &Runner{
		cfg:    cfg,
		deps:   deps,
		logger: logger.WithFields(deps.Logger),
		now:    time.Now,
	}, nil
}

// Run creates a campaign for posting and sends the initial email to every
// contact. A failed delivery is logged and does not stop the campaign.
func (r *Runner) Run(ctx context.Context, posting job.Posting, identity ranking.Identity, c *contacts.Contacts) (Result, error) {
	campaignID, err := r.deps.Store.CreateCampaign(ctx, storage.Campaign{
		JobTitle:       posting.JobTitle,
		Company:        posting.Company,
		JobDescription: posting.Description,
	})
	if err != nil {
		return Result{}, err
	}

	log := logger.WithCampaign(r.logger, campaignID, posting.Company, posting.JobTitle)
	log.Info("campaign started", zap.Int("contacts", c.Len()))

	result := Result{CampaignID: campaignID}
	pacer := utils.NewPacer(r.cfg.Pause)
	for _, contact := range c.Items {
		if err := pacer.Wait(ctx); err != nil {
			return result, err
		}

		sent, err := r.sendInitial(ctx, log, campaignID, contact, posting, identity)
		if err != nil {
			return result, err
		}
		if sent {
			result.Sent++
		} else {
			result.Failed++
		}
	}

	log.Info("campaign finished",
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (r *Runner) sendInitial(ctx context.Context, log *zap.Logger, campaignID int64, contact *contacts.Contact, posting job.Posting, identity ranking.Identity) (bool, error) {
	log = log.With(logger.RecipientFields(contact.Email, string(templates.Initial))...)

	contactID, err := r.deps.Store.UpsertContact(ctx, contact)
	if err != nil {
		return false, err
	}

	subject, body, err := r.deps.Renderer.Render(templates.Initial, contact.Recipient(), posting, identity)
	if err != nil {
		return false, fmt.Errorf("rendering initial email: %w", err)
	}

	entry := storage.EmailLog{
		CampaignID: campaignID,
		ContactID:  contactID,
		Type:       storage.EmailInitial,
		Subject:    subject,
		Body:       body,
	}

	sendErr := r.deps.Sender.Send(ctx, mailer.Message{
		To:      contact.Email,
		From:    r.cfg.From,
		Subject: subject,
		Body:    body,
	})
	entry.SentAt = r.now().UTC()

	if sendErr != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		entry.ErrorMessage = sendErr.Error()
		log.Warn("initial email failed", zap.Error(sendErr))
	} else {
		scheduled := entry.SentAt.Add(r.cfg.FollowupDelay)
		entry.IsSent = true
		entry.FollowupScheduledAt = &scheduled
		log.Info("initial email sent", zap.Time("followup_at", scheduled))
	}

	// Delivery is at least once: an email sent but not logged is invisible to
	// the already contacted filter, so a rerun can send it again.
	if _, err := r.deps.Store.LogEmail(ctx, entry); err != nil {
		if sendErr == nil {
			log.Error("initial email sent but not logged", zap.Error(err))
		}
		return false, err
	}

	return sendErr == nil, nil
}
