package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/abhatt13/referral-outreach-app/internal/contacts"
	"github.com/abhatt13/referral-outreach-app/internal/filtering"
	"github.com/abhatt13/referral-outreach-app/internal/ingest"
	"github.com/abhatt13/referral-outreach-app/internal/job"
	"github.com/abhatt13/referral-outreach-app/internal/logger"
	"github.com/abhatt13/referral-outreach-app/internal/mailer"
	"github.com/abhatt13/referral-outreach-app/internal/ranking"
	"github.com/abhatt13/referral-outreach-app/internal/resume"
	"github.com/abhatt13/referral-outreach-app/internal/secrets"
	"github.com/abhatt13/referral-outreach-app/internal/storage"
)

// setup builds the logger and reads the config shared by every command.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		config = &Config{}
	}

	return logger, config
}

func loadResume(ctx context.Context, path string, logger *zap.Logger) (resume.ParsedDocument, error) {
	if strings.TrimSpace(path) == "" {
		return resume.ParsedDocument{}, errors.New("resume file is not configured")
	}

	ingestor, err := ingest.New(ctx, ingest.WithLogger(logger))
	if err != nil {
		return resume.ParsedDocument{}, err
	}

	text, err := ingestor.Load(ctx, path)
	if err != nil {
		return resume.ParsedDocument{}, err
	}

	doc := resume.Parse(text)
	if missing := doc.Missing(); len(missing) > 0 {
		logger.Warn("some resume fields were not found", zap.Strings("missing", missing))
	}
	return doc, nil
}

// loadPosting reads the job description file when configured and applies the
// manual company and title overrides.
func loadPosting(cfg JobConfig) (job.Posting, error) {
	var posting job.Posting
	if path := strings.TrimSpace(cfg.File); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return job.Posting{}, fmt.Errorf("reading job description: %w", err)
		}
		posting = job.Parse(string(data))
	}

	return posting.Override(cfg.Company, cfg.Title), nil
}

func newRanker(cfg RankingConfig) *ranking.Ranker {
	return ranking.New(ranking.NewVocabulary(cfg.Keywords))
}

func loadContacts(path string, logger *zap.Logger) (*contacts.Contacts, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("contacts file is not configured")
	}

	c, err := contacts.Load(path)
	if err != nil {
		return nil, err
	}

	logger.Info("contacts loaded", zap.String("path", path), zap.Int("count", c.Len()))
	return c, nil
}

// prepareFilters lists the filter steps. already_contacted needs a store and is
// disabled when store is nil.
func prepareFilters(config *Config, posting job.Posting, store filtering.ContactedStore, ignoreContacted bool, logger *zap.Logger) *filtering.Filtering {
	steps := []filtering.Filter{
		filtering.NewMissingEmail(logger),
		filtering.NewDuplicates(),
		filtering.NewExcludedCompanies(config.Exclude.Companies, logger),
		filtering.NewExcludeFile(config.Exclude.File, logger),
		filtering.NewAlreadyContacted(
			&filtering.AlreadyContactedConfig{Ignore: ignoreContacted, Company: posting.Company},
			&filtering.AlreadyContactedDeps{Store: store, Logger: logger},
		),
	}

	f := filtering.New(steps, logger)
	if store == nil {
		f.DisableByName("already_contacted", "database is not used")
	}
	return f
}

func openStore(ctx context.Context, cfg DatabaseConfig, logger *zap.Logger) (*storage.Postgres, error) {
	store, err := storage.Open(ctx, cfg.DSN, logger)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func newSender(cfg SMTPConfig, logger *zap.Logger) (mailer.Sender, error) {
	password, err := secrets.Load(secrets.Source{
		Name:  "smtp password",
		Value: cfg.Password,
		File:  cfg.PasswordFile,
		Env:   "OUTREACH_SMTP_PASSWORD",
	})
	if err != nil {
		return nil, err
	}

	smtp, err := mailer.NewSMTP(&mailer.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: password,
		From:     cfg.From,
		TLS:      cfg.TLS,
	}, logger)
	if err != nil {
		return nil, err
	}
	return smtp, nil
}
