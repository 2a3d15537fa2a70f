package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitenglishhub/prepal/internal/catalog"
	"github.com/gitenglishhub/prepal/internal/config"
	"github.com/gitenglishhub/prepal/internal/llm"
	"github.com/gitenglishhub/prepal/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify configuration, data tables, and the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := false

		if gaps := catalog.ExclusionGaps(); len(gaps) > 0 {
			fmt.Println("Ambiguity table has one-way entries:")
			for _, g := range gaps {
				fmt.Printf("  %q excludes %q but not the reverse\n", g.From, g.To)
			}
		} else {
			fmt.Println("✓ Ambiguity table is symmetric")
		}

		cfg := config.Load()
		if llm.Credential(cfg.LLM).HasCredential() {
			fmt.Printf("✓ Generative backend configured (%s)\n", cfg.LLM.Provider)
		} else {
			fmt.Println("✗ No API key found. Set PREPAL_GEMINI_API_KEY (or GEMINI_API_KEY).")
			failed = true
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			fmt.Printf("✗ Database at %s: %v\n", dbPath, err)
			failed = true
		} else {
			defer st.Close()
			n, err := st.QuestionRepo().Count(cmd.Context())
			if err != nil {
				fmt.Printf("✗ Question cache: %v\n", err)
				failed = true
			} else {
				fmt.Printf("✓ Database at %s (%d cached questions)\n", dbPath, n)
			}
		}

		if failed {
			os.Exit(1)
		}
		return nil
	},
}
