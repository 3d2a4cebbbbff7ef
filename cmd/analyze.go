package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/program-matcher/internal/engine"
	"github.com/spigell/program-matcher/internal/logger"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <program-id>",
	Short: "Explain how well a single program fits the company profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		analyze(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("user", "u", "", "user id of the company profile")
	analyzeCmd.MarkFlagRequired("user")
}

func analyze(cmd *cobra.Command, programID string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// Single program analysis is rule based only.
	config.AI = nil

	a, err := newApplication(ctx, config, logger, nil)
	if err != nil {
		logger.Fatal("building the application", zap.Error(err))
	}
	defer a.Close()

	user, _ := cmd.Flags().GetString("user")
	analysis, err := a.engine.Analyze(ctx, user, programID)
	if err != nil {
		var engineErr *engine.Error
		if errors.As(err, &engineErr) && engineErr.Code != engine.CodeAnalysisFailed {
			logger.Error(engineErr.Message, zap.String("program_id", programID))
			return
		}
		logger.Fatal("analysis failed", zap.Error(err))
	}

	pretty, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		logger.Fatal("rendering the analysis", zap.Error(err))
	}
	fmt.Println(string(pretty))
}
