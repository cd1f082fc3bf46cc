package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var researchUserID string

var researchCmd = &cobra.Command{
	Use:   "research <query>",
	Short: "Run vendor research for one planning task",
	Long:  "Classifies the task, scrapes the matching category's vendor listing, upserts the scraped vendors, and re-ranks them against the user's to-do list.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if researchUserID == "" {
			return eris.New("--user is required")
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Pipeline.Run(cmd.Context(), args[0], researchUserID)
		if err != nil {
			return eris.Wrap(err, "research run")
		}

		zap.L().Info("research finished",
			zap.String("category", result.Category),
			zap.Int("urls_found", result.URLsFound),
			zap.Int("scraped", len(result.Scraped)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	researchCmd.Flags().StringVar(&researchUserID, "user", "", "user ID to attach results to")
	rootCmd.AddCommand(researchCmd)
}
