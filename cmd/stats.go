package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gitenglishhub/prepal/internal/catalog"
	"github.com/gitenglishhub/prepal/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		ctx := context.Background()
		p, err := st.ProgressRepo().Get(ctx)
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}

		fmt.Printf("Rank:        %s (level %d)\n", catalog.RankTitle(p.Level), p.Level)
		fmt.Printf("XP:          %d\n", p.XP)
		fmt.Printf("Answered:    %d (%d correct)\n", p.TotalQuestions, p.CorrectAnswers)
		if p.TotalQuestions > 0 {
			fmt.Printf("Accuracy:    %.0f%%\n", 100*float64(p.CorrectAnswers)/float64(p.TotalQuestions))
		}
		fmt.Printf("Streak:      %d (best %d)\n", p.Streak, p.BestStreak)
		if p.LastPlayed != nil {
			fmt.Printf("Last played: %s\n", p.LastPlayed.Local().Format("2006-01-02 15:04"))
		}

		if len(p.CategoryStats) > 0 {
			fmt.Println("\nBy category:")
			printTallies(p.CategoryStats)
		}
		if len(p.LevelStats) > 0 {
			fmt.Println("\nBy game level:")
			printTallies(p.LevelStats)
		}

		history, err := st.ProgressRepo().History(ctx, 10)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		if len(history) > 0 {
			fmt.Println("\nRecent answers:")
			for _, h := range history {
				mark := "✓"
				if !h.Correct {
					mark = "✗"
				}
				fmt.Printf("  %s %-10s L%-2d +%d XP\n", mark, h.Preposition, h.Level, h.XPEarned)
			}
		}
		return nil
	},
}

func printTallies(stats map[string]store.TallyStat) {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s := stats[k]
		fmt.Printf("  %-12s %d/%d\n", k, s.Correct, s.Answered)
	}
}
