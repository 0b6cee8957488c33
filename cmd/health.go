package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check stored records for inconsistencies (read-only)",
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

		report, err := h.CheckDataHealth(cmd.Context())
		if err != nil {
			return err
		}
		if report.Healthy() {
			fmt.Printf("All %d records are consistent.\n", report.Total)
			return nil
		}
		fmt.Printf("%d of %d records have issues:\n", len(report.Issues), report.Total)
		for _, issue := range report.Issues {
			fmt.Printf("  %s: %s\n", issue.RecordID, issue.Problem)
		}
		fmt.Println("\nRun 'snapgrade fix' to repair recomputable summaries.")
		return nil
	},
}
