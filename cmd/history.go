package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/csh0601/snapgrade/internal/history"
	"github.com/csh0601/snapgrade/internal/i18n"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse graded submissions",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List grading records (optionally filtered)",
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

		filter, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}
		records, err := h.GetFilteredHistory(cmd.Context(), filter)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println(i18n.T("History.empty"))
			return nil
		}

		// Header.
		fmt.Printf("%-12s  %-16s  %-20s  %9s  %7s\n",
			"ID", "Time", "Task", "Questions", "Rate")
		fmt.Println(strings.Repeat("─", 72))

		for _, r := range records {
			task := r.TaskID
			if len(task) > 20 {
				task = task[:17] + "..."
			}
			sum := r.Result.Summary
			fmt.Printf("%-12s  %-16s  %-20s  %4d/%-4d  %6.1f%%\n",
				r.ID, r.DisplayTime, task,
				sum.CorrectCount, sum.TotalQuestions, r.CorrectRate())
		}

		fmt.Printf("\n%d records\n", len(records))
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one grading record in full",
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

		rec, err := h.GetRecordByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("%s", i18n.Td("History.notFound", map[string]any{"ID": args[0]}))
		}

		sum := rec.Result.Summary
		fmt.Printf("Record   %s\n", rec.ID)
		fmt.Printf("Time     %s\n", rec.DisplayTime)
		fmt.Printf("Task     %s\n", rec.TaskID)
		fmt.Printf("Image    %s\n", rec.ImageRef)
		fmt.Printf("Score    %d/%d correct (%.1f%%)\n",
			sum.CorrectCount, sum.TotalQuestions, rec.CorrectRate())

		for _, out := range rec.Result.Outcomes {
			mark := "✓"
			if !out.Correct {
				mark = "✗"
			}
			fmt.Printf("\n  %s Question %d\n", mark, out.QuestionID+1)
			if out.Explanation != "" {
				fmt.Printf("    %s\n", out.Explanation)
			}
			if out.CorrectAnswer != "" {
				fmt.Printf("    Correct answer: %s\n", out.CorrectAnswer)
			}
		}
		if len(rec.WrongPoints) > 0 {
			fmt.Println("\nKnowledge points to review:")
			for _, wp := range rec.WrongPoints {
				fmt.Printf("  - %s\n", wp.Point)
			}
		}
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one grading record",
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

		ok, err := h.DeleteRecord(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s", i18n.Td("History.notFound", map[string]any{"ID": args[0]}))
		}
		fmt.Println(i18n.T("History.deleted"))
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all grading records",
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

		if _, err := h.ClearAllHistory(cmd.Context()); err != nil {
			return err
		}
		fmt.Println(i18n.T("History.cleared"))
		return nil
	},
}

func init() {
	f := historyListCmd.Flags()
	f.String("from", "", "Keep records on or after this date (YYYY-MM-DD)")
	f.String("to", "", "Keep records before this date (YYYY-MM-DD)")
	f.String("query", "", "Substring match on task id or display time")
	f.Float64("min-rate", -1, "Minimum correct rate in percent")
	f.Float64("max-rate", -1, "Maximum correct rate in percent")
	f.Bool("has-wrong", false, "Keep only records with wrong answers")
	f.Int("min-questions", 0, "Minimum question count")
	f.Int("max-questions", 0, "Maximum question count")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func filterFromFlags(cmd *cobra.Command) (history.Filter, error) {
	var f history.Filter
	flags := cmd.Flags()

	if s, _ := flags.GetString("from"); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			return f, fmt.Errorf("parse --from: %w", err)
		}
		f.From = t
	}
	if s, _ := flags.GetString("to"); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			return f, fmt.Errorf("parse --to: %w", err)
		}
		f.To = t
	}
	f.Query, _ = flags.GetString("query")
	if v, _ := flags.GetFloat64("min-rate"); v >= 0 {
		f.MinCorrectRate = &v
	}
	if v, _ := flags.GetFloat64("max-rate"); v >= 0 {
		f.MaxCorrectRate = &v
	}
	f.HasWrong, _ = flags.GetBool("has-wrong")
	f.MinQuestions, _ = flags.GetInt("min-questions")
	f.MaxQuestions, _ = flags.GetInt("max-questions")
	return f, nil
}
