package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Parse a job description, apply the overrides and print the posting as JSON",
	Run: func(_ *cobra.Command, _ []string) {
		showJob()
	},
}

func init() {
	rootCmd.AddCommand(jobCmd)
}

func showJob() {
	logger, config := setup()

	posting, err := loadPosting(config.Job)
	if err != nil {
		logger.Fatal("loading job posting", zap.Error(err))
	}

	if !posting.Valid() {
		logger.Warn("company was not found",
			zap.String("hint", "pass --company or set job.company in the configuration file"),
		)
	}

	pretty, _ := json.MarshalIndent(posting, "", "  ")
	fmt.Println(string(pretty))
}
