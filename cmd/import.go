package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/csh0601/snapgrade/internal/history"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import grading history from an exported JSON document",
	Args:  cobra.ExactArgs(1),
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

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read import file: %w", err)
		}

		mode, _ := cmd.Flags().GetString("mode")
		skip, _ := cmd.Flags().GetBool("skip-duplicates")
		opts := history.ImportOptions{
			Mode:           history.ImportMode(mode),
			SkipDuplicates: skip,
		}

		report, err := h.Import(cmd.Context(), data, opts)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d records", report.Imported)
		if report.Skipped > 0 {
			fmt.Printf(", skipped %d duplicates", report.Skipped)
		}
		if report.Renamed > 0 {
			fmt.Printf(", renamed %d colliding ids", report.Renamed)
		}
		fmt.Printf(". %d records total.\n", report.Total)
		return nil
	},
}

func init() {
	importCmd.Flags().String("mode", "merge", "Import mode: replace, merge or append")
	importCmd.Flags().Bool("skip-duplicates", false, "Skip incoming records whose id already exists")
}
