// Package followup sends the follow-up email for initial emails that got no
// follow-up yet once their scheduled time has passed.
package followup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhatt13/referral-outreach-app/internal/job"
	"github.com/abhatt13/referral-outreach-app/internal/logger"
	"github.com/abhatt13/referral-outreach-app/internal/mailer"
	"github.com/abhatt13/referral-outreach-app/internal/ranking"
	"github.com/abhatt13/referral-outreach-app/internal/resume"
	"github.com/abhatt13/referral-outreach-app/internal/storage"
	"github.com/abhatt13/referral-outreach-app/internal/templates"
	"github.com/abhatt13/referral-outreach-app/internal/utils"
)

const (
	DefaultCheckInterval = time.Hour
	DefaultPause         = 2 * time.Second
)

type Store interface {
	DueFollowups(ctx context.Context, now time.Time) ([]storage.DueFollowup, error)
	LogEmail(ctx context.Context, l storage.EmailLog) (int64, error)
	MarkFollowupSent(ctx context.Context, logID int64) error
}

type Renderer interface {
	Render(kind templates.Kind, recipient templates.Recipient, posting job.Posting, identity ranking.Identity) (string, string, error)
}

type Config struct {
	From          string
	CheckInterval time.Duration
	Pause         time.Duration
	Identity      ranking.IdentityDefaults
}

type Deps struct {
	Store    Store
	Sender   mailer.Sender
	Renderer Renderer
	Ranker   *ranking.Ranker
	// Resume is the sender's parsed resume. Bullets are re-ranked against each
	// campaign's job description.
	Resume resume.ParsedDocument
	Logger *zap.Logger
}

type Result struct {
	Due    int
	Sent   int
	Failed int
}

type Scheduler struct {
	cfg    Config
	deps   Deps
	logger *zap.Logger
	now    func() time.Time
}

func New(cfg Config, deps Deps) (*Scheduler, error) {
	if deps.Store == nil {
		return nil, errors.New("campaign store is required")
	}
	if deps.Sender == nil {
		return nil, errors.New("email sender is required")
	}
	if deps.Renderer == nil {
		return nil, errors.New("template renderer is required")
	}
	if deps.Ranker == nil {
		deps.Ranker = ranking.New(nil)
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultCheckInterval
	}
	if cfg.Pause < 0 {
		cfg.Pause = 0
	}

	return &Scheduler{
		cfg:    cfg,
		deps:   deps,
		logger: logger.WithFields(deps.Logger),
		now:    time.Now,
	}, nil
}

// Run checks for due follow-ups every CheckInterval until ctx is done. A failed
// pass is logged and retried on the next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting follow-up scheduler", zap.Duration("check_interval", s.cfg.CheckInterval))

	for {
		if _, err := s.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			s.logger.Error("follow-up pass failed", zap.Error(err))
		}

		if err := utils.WaitFor(ctx, s.cfg.CheckInterval); err != nil {
			break
		}
	}

	s.logger.Info("follow-up scheduler stopped")
	return nil
}

// RunOnce sends every follow-up that is due now.
func (s *Scheduler) RunOnce(ctx context.Context) (Result, error) {
	due, err := s.deps.Store.DueFollowups(ctx, s.now().UTC())
	if err != nil {
		return Result{}, fmt.Errorf("get due follow-ups: %w", err)
	}

	result := Result{Due: len(due)}
	if len(due) == 0 {
		s.logger.Info("no follow-ups needed at this time")
		return result, nil
	}

	s.logger.Info("found emails needing follow-up", zap.Int("count", len(due)))

	identities := make(map[int64]ranking.Identity)
	pacer := utils.NewPacer(s.cfg.Pause)
	for _, d := range due {
		if err := pacer.Wait(ctx); err != nil {
			return result, err
		}

		identity, ok := identities[d.Campaign.ID]
		if !ok {
			identity = s.deps.Ranker.FormatForEmail(s.deps.Resume, d.Campaign.JobDescription, s.cfg.Identity)
			identities[d.Campaign.ID] = identity
		}

		sent, err := s.send(ctx, d, identity)
		if err != nil {
			return result, err
		}
		if sent {
			result.Sent++
		} else {
			result.Failed++
		}
	}

	return result, nil
}

func (s *Scheduler) send(ctx context.Context, d storage.DueFollowup, identity ranking.Identity) (bool, error) {
	log := logger.WithCampaign(s.logger, d.Campaign.ID, d.Campaign.Company, d.Campaign.JobTitle).
		With(logger.RecipientFields(d.Contact.Email, string(templates.Followup))...)

	posting := job.Manual(d.Campaign.Company, d.Campaign.JobTitle, d.Campaign.JobDescription)
	subject, body, err := s.deps.Renderer.Render(templates.Followup, d.Contact.Recipient(), posting, identity)
	if err != nil {
		return false, fmt.Errorf("rendering follow-up email: %w", err)
	}

	sendErr := s.deps.Sender.Send(ctx, mailer.Message{
		To:      d.Contact.Email,
		From:    s.cfg.From,
		Subject: subject,
		Body:    body,
	})
	if sendErr != nil && ctx.Err() != nil {
		return false, ctx.Err()
	}

	entry := storage.EmailLog{
		CampaignID: d.Campaign.ID,
		ContactID:  d.ContactID,
		Type:       storage.EmailFollowup,
		Subject:    subject,
		Body:       body,
		SentAt:     s.now().UTC(),
		IsSent:     sendErr == nil,
	}
	if sendErr != nil {
		entry.ErrorMessage = sendErr.Error()
	}

	if sendErr != nil {
		if _, err := s.deps.Store.LogEmail(ctx, entry); err != nil {
			return false, err
		}
		log.Warn("follow-up email failed", zap.Error(sendErr))
		return false, nil
	}

	// Delivery is at least once: the original is marked before the follow-up is
	// logged, and a failed mark means the next pass sends it again.
	if err := s.deps.Store.MarkFollowupSent(ctx, d.LogID); err != nil {
		log.Error("follow-up sent but not marked", zap.Error(err))
		return false, err
	}

	if _, err := s.deps.Store.LogEmail(ctx, entry); err != nil {
		log.Error("follow-up sent but not logged", zap.Error(err))
		return false, err
	}

	log.Info("follow-up sent")
	return true, nil
}
