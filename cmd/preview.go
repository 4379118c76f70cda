package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhatt13/referral-outreach-app/internal/contacts"
	"github.com/abhatt13/referral-outreach-app/internal/job"
	"github.com/abhatt13/referral-outreach-app/internal/ranking"
	"github.com/abhatt13/referral-outreach-app/internal/templates"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the initial and follow-up emails for every contact without sending anything",
	Run: func(_ *cobra.Command, _ []string) {
		preview()
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func preview() {
	ctx := context.Background()
	logger, config := setup()

	doc, err := loadResume(ctx, config.Resume, logger)
	if err != nil {
		logger.Fatal("loading resume", zap.Error(err))
	}

	posting, err := loadPosting(config.Job)
	if err != nil {
		logger.Fatal("loading job posting", zap.Error(err))
	}

	identity := newRanker(config.Ranking).FormatForEmail(doc, posting.Description, config.Identity)
	store := templates.NewStore(config.Templates)

	people := &contacts.Contacts{Items: []*contacts.Contact{{}}}
	if config.Contacts != "" {
		loaded, err := loadContacts(config.Contacts, logger)
		if err != nil {
			logger.Fatal("loading contacts", zap.Error(err))
		}

		people, err = prepareFilters(config, posting, nil, false, logger).RunFilters(ctx, loaded)
		if err != nil {
			logger.Fatal("filtering failed", zap.Error(err))
		}
	} else {
		logger.Info("no contacts file configured, previewing for a blank recipient")
	}

	if err := printPreviews(store, people, posting, identity, true); err != nil {
		logger.Fatal("rendering previews", zap.Error(err))
	}
}

func printPreviews(store *templates.Store, people *contacts.Contacts, posting job.Posting, identity ranking.Identity, withFollowup bool) error {
	kinds := []templates.Kind{templates.Initial}
	if withFollowup {
		kinds = append(kinds, templates.Followup)
	}

	for _, contact := range people.Items {
		for _, kind := range kinds {
			text, err := store.Preview(kind, contact.Recipient(), posting, identity)
			if err != nil {
				return err
			}
			fmt.Printf("=== %s email\n%s\n\n", kind, text)
		}
	}
	return nil
}
