package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhatt13/referral-outreach-app/internal/contacts"
	"github.com/abhatt13/referral-outreach-app/internal/filtering"
	"github.com/abhatt13/referral-outreach-app/internal/job"
	"github.com/abhatt13/referral-outreach-app/internal/mailer"
	"github.com/abhatt13/referral-outreach-app/internal/outreach"
	"github.com/abhatt13/referral-outreach-app/internal/ranking"
	"github.com/abhatt13/referral-outreach-app/internal/storage"
	"github.com/abhatt13/referral-outreach-app/internal/templates"
)

const (
	PromptYes                 = "Yes"
	PromptNo                  = "No"
	PromptPreview             = "Show email previews"
	PromptReportByCompanies   = "Report by companies"
	PromptAppendToExcludeFile = "Append all contacts to exclude file"
)

var errExit = errors.New("exit requested")

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send the initial referral email to every filtered contact",
	Run: func(cmd *cobra.Command, _ []string) {
		send(cmd)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().BoolP("do-not-exclude-contacted", "f", false, "do not exclude contacts already emailed about this company")
	sendCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before sending")
	sendCmd.Flags().Bool("dry-run", false, "log the emails instead of sending them. The database is not used")
}

// campaign holds everything a send needs once inputs are resolved.
type campaign struct {
	config    *Config
	logger    *zap.Logger
	posting   job.Posting
	identity  ranking.Identity
	templates *templates.Store
	store     *storage.Postgres
	dryRun    bool
}

func send(cmd *cobra.Command) {
	ctx := context.Background()
	logger, config := setup()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	ignoreContacted, _ := cmd.Flags().GetBool("do-not-exclude-contacted")
	autoApprove, _ := cmd.Flags().GetBool("auto-approve")

	logger.Info("starting the referral outreach", zap.String("version", version), zap.Bool("dry_run", dryRun))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	posting, err := loadPosting(config.Job)
	if err != nil {
		logger.Fatal("loading job posting", zap.Error(err))
	}
	if !posting.Valid() {
		logger.Fatal("company is required to run a campaign",
			zap.String("hint", "pass --company or set job.company in the configuration file"),
		)
	}

	doc, err := loadResume(ctx, config.Resume, logger)
	if err != nil {
		logger.Fatal("loading resume", zap.Error(err))
	}

	people, err := loadContacts(config.Contacts, logger)
	if err != nil {
		logger.Fatal("loading contacts", zap.Error(err))
	}

	c := &campaign{
		config:    config,
		logger:    logger,
		posting:   posting,
		identity:  newRanker(config.Ranking).FormatForEmail(doc, posting.Description, config.Identity),
		templates: templates.NewStore(config.Templates),
		dryRun:    dryRun,
	}

	var contacted filtering.ContactedStore
	if !dryRun {
		c.store, err = openStore(ctx, config.Database, logger)
		if err != nil {
			logger.Fatal("opening database", zap.Error(err),
				zap.String("hint", "set database.dsn or OUTREACH_DATABASE_DSN"),
			)
		}
		defer c.store.Close()
		contacted = c.store
	}

	people, err = prepareFilters(config, posting, contacted, ignoreContacted, logger).RunFilters(ctx, people)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if people.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no contacts left after filters"))
		return
	}

	items := []string{PromptYes, PromptNo, PromptPreview, PromptReportByCompanies}
	if config.Exclude.File != "" {
		items = append(items, PromptAppendToExcludeFile)
	}
	prompt := promptui.Select{
		Label: "Proceed?",
		Items: items,
	}

	action := PromptYes
	for {
		if !autoApprove {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		logger.Info("current list of contacts", zap.Int("count", people.Len()))

		if err := c.handleAction(ctx, action, people); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func (c *campaign) handleAction(ctx context.Context, action string, people *contacts.Contacts) error {
	switch action {
	case PromptYes:
		if err := c.run(ctx, people); err != nil {
			return err
		}
		return errExit
	case PromptNo:
		c.logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptPreview:
		return printPreviews(c.templates, people, c.posting, c.identity, false)
	case PromptReportByCompanies:
		pretty, _ := json.MarshalIndent(people.ReportByCompany(), "", "  ")
		c.logger.Info(string(pretty), zap.Int("contacts count", people.Len()))
		return nil
	case PromptAppendToExcludeFile:
		if err := contacts.AppendToFile(c.config.Exclude.File, people); err != nil {
			return fmt.Errorf("append to exclude file: %w", err)
		}
		c.logger.Info("appended to exclude file", zap.String("filename", c.config.Exclude.File))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (c *campaign) run(ctx context.Context, people *contacts.Contacts) error {
	if c.dryRun {
		return c.dryRunSend(ctx, people)
	}

	sender, err := newSender(c.config.SMTP, c.logger)
	if err != nil {
		return fmt.Errorf("configuring smtp: %w", err)
	}

	runner, err := outreach.NewRunner(outreach.Config{
		From:          c.config.SMTP.From,
		FollowupDelay: c.config.Followup.Delay,
		Pause:         c.config.Followup.Pause,
	}, outreach.Deps{
		Store:    c.store,
		Sender:   sender,
		Renderer: c.templates,
		Logger:   c.logger,
	})
	if err != nil {
		return err
	}

	result, err := runner.Run(ctx, c.posting, c.identity, people)
	if err != nil {
		return err
	}

	c.logger.Info("campaign done",
		zap.Int64("campaign_id", result.CampaignID),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
	)
	return nil
}

func (c *campaign) dryRunSend(ctx context.Context, people *contacts.Contacts) error {
	sender := mailer.NewDryRun(c.logger)
	for _, contact := range people.Items {
		subject, body, err := c.templates.Render(templates.Initial, contact.Recipient(), c.posting, c.identity)
		if err != nil {
			return err
		}
		if err := sender.Send(ctx, mailer.Message{
			To:      contact.Email,
			From:    c.config.SMTP.From,
			Subject: subject,
			Body:    body,
		}); err != nil {
			return err
		}
	}

	c.logger.Info("dry run done", zap.Int("emails", len(sender.Sent)))
	return nil
}
