package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/program-matcher/internal/engine"
	"github.com/spigell/program-matcher/internal/logger"
	"github.com/spigell/program-matcher/internal/programs"
	"github.com/spigell/program-matcher/internal/scoring"
)

const (
	PromptShowDetails          = "Show details"
	PromptReportByOrganization = "Report by organization"
	PromptMatchesToFile        = "Dump matches to file"
	PromptExit                 = "Exit"
	PromptBack                 = "back"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowDetails, PromptReportByOrganization, PromptMatchesToFile, PromptExit},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score the program catalog for a company and list the best matches",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	defaults := engine.NewRequest("")
	matchCmd.Flags().StringP("user", "u", "", "user id of the company profile")
	matchCmd.Flags().Int("min-score", defaults.MinScore, "minimum rule score of a listed program")
	matchCmd.Flags().Int("limit", defaults.Limit, "page size")
	matchCmd.Flags().Int("offset", defaults.Offset, "page offset")
	matchCmd.Flags().Bool("active-only", false, "list only programs accepting applications today")
	matchCmd.Flags().Bool("include-upcoming", defaults.IncludeUpcoming, "also list programs opening within the upcoming horizon")
	matchCmd.Flags().Bool("ai", false, "refine the top matches with the AI analyzer")
	matchCmd.Flags().Int("ai-limit", defaults.AILimit, "number of top matches to analyse with AI")
	matchCmd.Flags().Bool("skip-cache", false, "ignore cached AI analyses")
	matchCmd.Flags().BoolP("auto-approve", "y", false, "print the matches and exit without asking")

	matchCmd.MarkFlagRequired("user")
}

func match(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the program-matcher", zap.String("version", version))

	logger.Debug(fmt.Sprintf("starting with config: \n %s", renderConfig(config)))

	a, err := newApplication(ctx, config, logger, nil)
	if err != nil {
		logger.Fatal("building the application", zap.Error(err))
	}
	defer a.Close()

	req, err := matchRequest(cmd)
	if err != nil {
		logger.Fatal("reading flags", zap.Error(err))
	}

	resp, err := a.engine.Match(ctx, req)
	if err != nil {
		var engineErr *engine.Error
		if errors.As(err, &engineErr) && engineErr.Code == engine.CodeProfileRequired {
			logger.Error(engineErr.Message, zap.String("user_id", req.UserID))
			return
		}
		logger.Fatal("matching failed", zap.Error(err))
	}

	logger.Info(resp.Message,
		zap.Int("total", resp.Pagination.Total),
		zap.Int("offset", resp.Pagination.Offset),
		zap.Bool("has_more", resp.Pagination.HasMore),
		zap.Int("profile_completeness", resp.ProfileCompleteness),
	)
	if resp.AI.Enabled {
		logger.Info("ai analysis",
			zap.Int("analyzed", resp.AI.AnalyzedCount),
			zap.Int("cache_hits", resp.AI.CacheHits),
			zap.Int("live_calls", resp.AI.LiveCalls),
			zap.Int("failures", resp.AI.Failures),
		)
	}
	printMatches(resp.Matches)

	if len(resp.Matches) == 0 {
		logger.Info("exiting", zap.String("reason", "no programs matched"))
		return
	}
	if auto, _ := cmd.Flags().GetBool("auto-approve"); auto {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, resp.Matches); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func matchRequest(cmd *cobra.Command) (engine.Request, error) {
	flags := cmd.Flags()
	user, err := flags.GetString("user")
	if err != nil {
		return engine.Request{}, err
	}
	req := engine.NewRequest(strings.TrimSpace(user))

	ints := map[string]*int{
		"min-score": &req.MinScore,
		"limit":     &req.Limit,
		"offset":    &req.Offset,
		"ai-limit":  &req.AILimit,
	}
	for name, dst := range ints {
		if *dst, err = flags.GetInt(name); err != nil {
			return req, err
		}
	}

	bools := map[string]*bool{
		"active-only":      &req.ActiveOnly,
		"include-upcoming": &req.IncludeUpcoming,
		"ai":               &req.AI,
		"skip-cache":       &req.SkipCache,
	}
	for name, dst := range bools {
		if *dst, err = flags.GetBool(name); err != nil {
			return req, err
		}
	}
	return req, nil
}

func printMatches(matches []*scoring.MatchedProgram) {
	for idx, m := range matches {
		fmt.Printf("%2d. [%3d점] %s (%s)\n", idx+1, m.FitScore, m.Program.Title, m.Program.ID)
		if m.Breakdown != nil && m.Breakdown.Summary != "" {
			fmt.Printf("    %s\n", m.Breakdown.Summary)
		}
	}
}

func handleAction(action string, logger *zap.Logger, matches []*scoring.MatchedProgram) error {
	switch action {
	case PromptShowDetails:
		return showDetails(matches)
	case PromptReportByOrganization:
		pretty, _ := json.MarshalIndent(toPrograms(matches).ReportByOrganization(), "", "  ")
		logger.Info(string(pretty), zap.Int("programs count", len(matches)))
		return nil
	case PromptMatchesToFile:
		filename, err := programs.DumpToTmpFile(matches)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func showDetails(matches []*scoring.MatchedProgram) error {
	for {
		items := make([]string, 0, len(matches)+1)
		for _, m := range matches {
			items = append(items, fmt.Sprintf("%s %d점 / %s / %s", m.Program.ID, m.FitScore, m.Program.Title, m.Program.Organization))
		}

		matchPrompt := promptui.Select{
			Label: "Choose a program and press ENTER",
			Items: append(items, PromptBack),
		}

		_, selected, err := matchPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		programID := strings.Split(selected, " ")[0]
		chosen := findMatch(matches, programID)
		if chosen == nil {
			return fmt.Errorf("there is no such program id %s", programID)
		}

		pretty, err := json.MarshalIndent(chosen, "", "  ")
		if err != nil {
			return fmt.Errorf("render program details: %w", err)
		}
		fmt.Println(string(pretty))
	}
}

func findMatch(matches []*scoring.MatchedProgram, id string) *scoring.MatchedProgram {
	for _, m := range matches {
		if m.Program.ID == id {
			return m
		}
	}
	return nil
}

func toPrograms(matches []*scoring.MatchedProgram) *programs.Programs {
	items := make([]*programs.Program, 0, len(matches))
	for _, m := range matches {
		items = append(items, m.Program)
	}
	return &programs.Programs{Items: items}
}
