package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhatt13/referral-outreach-app/internal/storage"
)

var statsCmd = &cobra.Command{
	Use:   "stats [campaign-id]",
	Short: "Print sent and follow-up counts for one campaign or for all of them",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		stats(args)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func stats(args []string) {
	ctx := context.Background()
	logger, config := setup()

	store, err := openStore(ctx, config.Database, logger)
	if err != nil {
		logger.Fatal("opening database", zap.Error(err))
	}
	defer store.Close()

	var report interface{}
	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			logger.Fatal("invalid campaign id", zap.String("campaign_id", args[0]))
		}

		report, err = store.CampaignStats(ctx, id)
		if err != nil {
			logger.Fatal("getting campaign stats", zap.Error(err))
		}
	} else {
		campaigns, err := store.Campaigns(ctx)
		if err != nil {
			logger.Fatal("listing campaigns", zap.Error(err))
		}

		all := make([]storage.Stats, 0, len(campaigns))
		for _, c := range campaigns {
			s, err := store.CampaignStats(ctx, c.ID)
			if err != nil {
				logger.Fatal("getting campaign stats", zap.Error(err), zap.Int64("campaign_id", c.ID))
			}
			all = append(all, s)
		}
		report = all
	}

	pretty, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(pretty))
}
