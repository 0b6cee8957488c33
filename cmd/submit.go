package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/csh0601/snapgrade/internal/i18n"
	"github.com/csh0601/snapgrade/internal/upload"
)

var submitCmd = &cobra.Command{
	Use:   "submit <image>",
	Short: "Upload a homework photo for grading",
	Long:  "Uploads the photo, waits for the grading result and saves it to the local history. The argument is a file path or a data: URI.",
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

		ucfg := upload.DefaultConfig(cfg.ServerURL)
		ucfg.Candidates = cfg.FallbackURLs
		ucfg.ProbeTimeout = cfg.ProbeTimeout
		ucfg.RequestTimeout = cfg.RequestTimeout
		ucfg.Retry.MaxAttempts = cfg.MaxAttempts
		ucfg.Messages = func(k upload.Kind) string {
			return i18n.MessageFor(string(k))
		}
		orch := upload.New(ucfg, upload.NewHTTPSubmitter())

		// Ctrl-C cancels the submission; cancellation is terminal.
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Println(i18n.T("Submit.uploading"))
		result, err := orch.Submit(ctx, args[0])
		if err != nil {
			if upload.IsCancelled(err) {
				fmt.Println(i18n.MessageFor(string(upload.KindCancelled)))
				return nil
			}
			return err
		}

		rec, err := h.SaveHistory(cmd.Context(), args[0], result, result.TaskID)
		if err != nil {
			return fmt.Errorf("save history: %w", err)
		}

		sum := rec.Result.Summary
		fmt.Println(i18n.Td("Submit.done", map[string]any{
			"Total":   sum.TotalQuestions,
			"Correct": sum.CorrectCount,
			"Wrong":   sum.WrongCount,
		}))
		for _, out := range rec.Result.Outcomes {
			mark := "✓"
			if !out.Correct {
				mark = "✗"
			}
			fmt.Printf("  %s #%d", mark, out.QuestionID+1)
			if !out.Correct && out.Explanation != "" {
				fmt.Printf("  %s", out.Explanation)
			}
			fmt.Println()
		}
		fmt.Printf("\nSaved as %s\n", rec.ID)
		return nil
	},
}
