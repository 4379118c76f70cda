package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var parseCmd = &cobra.Command{
	Use:   "parse [resume-file]",
	Short: "Extract the fields of a resume and print them as JSON",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		parse(args)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func parse(args []string) {
	ctx := context.Background()
	logger, _ := setup()

	path := viper.GetString("resume")
	if len(args) == 1 {
		path = args[0]
	}

	doc, err := loadResume(ctx, path, logger)
	if err != nil {
		logger.Fatal("parsing resume", zap.Error(err), zap.String("path", path))
	}

	pretty, _ := json.MarshalIndent(doc, "", "  ")
	fmt.Println(string(pretty))
}
