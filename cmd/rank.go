package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rankCmd = &cobra.Command{
	Use:   "rank <user-id>",
	Short: "Re-rank stored vendors against a user's to-do list",
	Long:  "Runs the relevance pass on its own: every to-do item already flagged for research is matched against stored vendors of its category, and the selections are attached to the user.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		vendors, err := env.Pipeline.RankRelevantVendors(cmd.Context(), args[0])
		if err != nil {
			return eris.Wrap(err, "rank vendors")
		}

		zap.L().Info("ranking finished",
			zap.String("user_id", args[0]),
			zap.Int("matched", len(vendors)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(vendors)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)
}
