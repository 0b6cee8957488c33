package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/csh0601/snapgrade/internal/i18n"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate grading statistics",
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

		stats, err := h.GetStatistics(cmd.Context())
		if err != nil {
			return err
		}
		if stats.TotalRecords == 0 {
			fmt.Println(i18n.T("History.empty"))
			return nil
		}

		fmt.Printf("Submissions    %d\n", stats.TotalRecords)
		fmt.Printf("Questions      %d\n", stats.TotalQuestions)
		fmt.Printf("Correct        %d\n", stats.TotalCorrect)
		fmt.Printf("Wrong          %d\n", stats.TotalWrong)
		fmt.Printf("Accuracy       %.1f%%\n", stats.OverallAccuracy*100)
		if stats.LastActivity > 0 {
			last := time.UnixMilli(stats.LastActivity).Local()
			fmt.Printf("Last activity  %s\n", last.Format("2006-01-02 15:04"))
		}

		if len(stats.WrongByKnowledgePoint) > 0 {
			type kpCount struct {
				point string
				n     int
			}
			points := make([]kpCount, 0, len(stats.WrongByKnowledgePoint))
			for p, n := range stats.WrongByKnowledgePoint {
				points = append(points, kpCount{p, n})
			}
			sort.Slice(points, func(i, j int) bool {
				if points[i].n != points[j].n {
					return points[i].n > points[j].n
				}
				return points[i].point < points[j].point
			})

			fmt.Println("\nMost missed knowledge points:")
			for i, p := range points {
				if i == 10 {
					break
				}
				fmt.Printf("  %3d  %s\n", p.n, p.point)
			}
		}
		return nil
	},
}
