package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export grading history as JSON or CSV",
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

		out := os.Stdout
		if path, _ := cmd.Flags().GetString("out"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "json":
			return h.ExportJSON(cmd.Context(), out)
		case "csv":
			return h.ExportCSV(cmd.Context(), out)
		default:
			return fmt.Errorf("unknown format %q (use json or csv)", format)
		}
	},
}

func init() {
	exportCmd.Flags().String("format", "json", "Output format: json or csv")
	exportCmd.Flags().String("out", "", "Output file (default stdout)")
}
