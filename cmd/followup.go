package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhatt13/referral-outreach-app/internal/followup"
	"github.com/abhatt13/referral-outreach-app/internal/resume"
	"github.com/abhatt13/referral-outreach-app/internal/templates"
)

var followupCmd = &cobra.Command{
	Use:   "followup",
	Short: "Send follow-up emails that are due, checking periodically until interrupted",
	Run: func(cmd *cobra.Command, _ []string) {
		runFollowups(cmd)
	},
}

func init() {
	rootCmd.AddCommand(followupCmd)

	followupCmd.Flags().Bool("once", false, "run a single check and exit")
}

func runFollowups(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, config := setup()
	once, _ := cmd.Flags().GetBool("once")

	var doc resume.ParsedDocument
	if config.Resume != "" {
		var err error
		doc, err = loadResume(ctx, config.Resume, logger)
		if err != nil {
			logger.Fatal("loading resume", zap.Error(err))
		}
	} else {
		logger.Warn("resume is not configured, follow-ups will use generic bullets")
	}

	store, err := openStore(ctx, config.Database, logger)
	if err != nil {
		logger.Fatal("opening database", zap.Error(err),
			zap.String("hint", "set database.dsn or OUTREACH_DATABASE_DSN"),
		)
	}
	defer store.Close()

	sender, err := newSender(config.SMTP, logger)
	if err != nil {
		logger.Fatal("configuring smtp", zap.Error(err))
	}

	scheduler, err := followup.New(followup.Config{
		From:          config.SMTP.From,
		CheckInterval: config.Followup.CheckInterval,
		Pause:         config.Followup.Pause,
		Identity:      config.Identity,
	}, followup.Deps{
		Store:    store,
		Sender:   sender,
		Renderer: templates.NewStore(config.Templates),
		Ranker:   newRanker(config.Ranking),
		Resume:   doc,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("creating scheduler", zap.Error(err))
	}

	if !once {
		_ = scheduler.Run(ctx)
		return
	}

	result, err := scheduler.RunOnce(ctx)
	if err != nil {
		logger.Fatal("sending follow-ups", zap.Error(err))
	}
	logger.Info("follow-up check done",
		zap.Int("due", result.Due),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
	)
}
