package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aisleworks/vendor-research/internal/export"
	"github.com/aisleworks/vendor-research/internal/model"
)

var (
	vendorsType string
	vendorsXLSX string
)

var vendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "List stored vendor records",
	Long:  "Prints stored vendors as JSON, optionally filtered by category or exported to an XLSX report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		var vendors []model.VendorRecord
		if vendorsType != "" {
			vendors, err = st.ListVendorsByType(cmd.Context(), vendorsType)
		} else {
			vendors, err = st.ListVendors(cmd.Context())
		}
		if err != nil {
			return eris.Wrap(err, "list vendors")
		}

		if vendorsXLSX != "" {
			if err := export.WriteVendorsXLSX(vendorsXLSX, vendors); err != nil {
				return err
			}
			zap.L().Info("vendors exported",
				zap.String("path", vendorsXLSX),
				zap.Int("count", len(vendors)),
			)
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(vendors)
	},
}

func init() {
	vendorsCmd.Flags().StringVar(&vendorsType, "type", "", "filter by vendor category")
	vendorsCmd.Flags().StringVar(&vendorsXLSX, "xlsx", "", "write an XLSX report to this path instead of printing JSON")
	rootCmd.AddCommand(vendorsCmd)
}
