package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Recompute inconsistent summaries in stored records",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		h, closeStore, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		report, err := h.FixExistingRecords(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Fixed %d records.\n", report.Fixed)
		for _, e := range report.Errors {
			fmt.Printf("  skipped: %s\n", e)
		}
		return nil
	},
}
