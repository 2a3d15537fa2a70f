package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitenglishhub/prepal/internal/cache"
	"github.com/gitenglishhub/prepal/internal/catalog"
	"github.com/gitenglishhub/prepal/internal/config"
	"github.com/gitenglishhub/prepal/internal/llm"
	"github.com/gitenglishhub/prepal/internal/progress"
	"github.com/gitenglishhub/prepal/internal/questiongen"
	"github.com/gitenglishhub/prepal/internal/store"
	"github.com/gitenglishhub/prepal/internal/telemetry"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a practice session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func init() {
	playCmd.Flags().String("category", "", "Pin questions to one category (Location, Direction, Time, ...)")
	playCmd.Flags().Bool("deep-dive", false, "Drill the polysemous uses of each preposition")
	playCmd.Flags().Bool("speak", false, "Narrate each sentence to an audio file")
	playCmd.Flags().Int("questions", 0, "Stop after N questions (0 = play until quit)")
	rootCmd.Flags().AddFlagSet(playCmd.Flags())
}

func runPlay(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := config.Load()
	log, err := config.NewLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	creds := llm.Credential(cfg.LLM)
	if !creds.HasCredential() {
		fmt.Fprintln(os.Stderr, "Generative backend not configured.")
		fmt.Fprintln(os.Stderr, "Set PREPAL_GEMINI_API_KEY (or GEMINI_API_KEY) and try again.")
		return creds.RequestCredential(ctx)
	}
	if err := cfg.LLM.Validate(); err != nil {
		return fmt.Errorf("backend configuration: %w", err)
	}
	provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo())
	if err != nil {
		return fmt.Errorf("initialize provider: %w", err)
	}

	var remote cache.Remote
	if cfg.RedisURL != "" {
		r, err := cache.NewRedisRemote(cfg.RedisURL)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Remote cache unavailable:", err)
		} else {
			remote = r
			defer r.Close()
		}
	}

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	questions := cache.NewQuestions(st.QuestionRepo(), remote, rng, log)
	media := cache.NewMedia(st.MediaRepo(), log)
	gen := questiongen.NewService(provider, questions, media, cfg.Gen, rng, log)
	ledger := progress.NewService(st.ProgressRepo(), log)

	var session *telemetry.Logger
	if cfg.Telemetry {
		session = telemetry.NewLogger("preposition-pal", cfg.UserID, st.SessionRepo(), log)
		session.StartSession(ctx)
	}

	category, err := categoryFlag(cmd)
	if err != nil {
		return err
	}
	deepDive, _ := cmd.Flags().GetBool("deep-dive")
	speak, _ := cmd.Flags().GetBool("speak")
	maxQuestions, _ := cmd.Flags().GetInt("questions")

	return drillLoop(ctx, drillDeps{
		gen:      gen,
		ledger:   ledger,
		session:  session,
		creds:    creds,
		category: category,
		deepDive: deepDive,
		speak:    speak,
		max:      maxQuestions,
	})
}

type drillDeps struct {
	gen      *questiongen.Service
	ledger   *progress.Service
	session  *telemetry.Logger
	creds    llm.CredentialProvider
	category *catalog.Category
	deepDive bool
	speak    bool
	max      int
}

func drillLoop(ctx context.Context, d drillDeps) error {
	in := bufio.NewScanner(os.Stdin)

	for seq := 1; d.max == 0 || seq <= d.max; seq++ {
		p, err := d.ledger.Get(ctx)
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}
		level := catalog.LevelFromRank(p.Level)

		if d.gen.IsVideoRound(seq) {
			fmt.Println("\n🎬 Video round!")
		}

		q, err := d.gen.NextQuestion(ctx, questiongen.Request{
			Level:    level,
			Category: d.category,
			Sequence: seq,
			DeepDive: d.deepDive,
			OnProgress: func(s string) {
				fmt.Println("  " + s)
			},
		})
		if err != nil {
			var cred *llm.ErrCredential
			if errors.As(err, &cred) {
				if rerr := d.creds.RequestCredential(ctx); rerr != nil {
					fmt.Fprintln(os.Stderr, "No API key configured. Set PREPAL_GEMINI_API_KEY and restart.")
				} else {
					fmt.Fprintln(os.Stderr, "API key rejected. Re-authenticate and restart.")
				}
				return err
			}
			fmt.Fprintln(os.Stderr, "Could not generate a question:", err)
			fmt.Fprintln(os.Stderr, "Trying another one...")
			continue
		}

		if d.session != nil {
			d.session.StartActivity(ctx, fmt.Sprintf("drill-%d", seq), "drill",
				fmt.Sprintf("Preposition drill: %s", q.Preposition))
		}

		printQuestion(seq, p, q)

		if d.speak {
			if path, err := narrateToFile(ctx, d.gen, q); err == nil {
				fmt.Println("  audio:", path)
			}
		}

		choice, quit := readChoice(in, len(q.Options))
		if quit {
			if d.session != nil {
				d.session.EndActivity(ctx)
			}
			fmt.Println("Session over. Run `prepal stats` to see your progress.")
			return nil
		}

		answered := q.Options[choice-1]
		correct := answered == q.Answer()

		out, err := d.ledger.Record(ctx, progress.Result{
			GameLevel:   q.Level,
			Preposition: q.Preposition,
			Category:    q.Category,
			Correct:     correct,
			XPEarned:    progress.AwardXP(int(q.Level), correct),
		})
		if err != nil {
			return fmt.Errorf("record result: %w", err)
		}

		if correct {
			fmt.Printf("✓ Correct! +%d XP (streak %d)\n", out.XPEarned, out.Progress.Streak)
		} else {
			fmt.Printf("✗ Not quite. The answer is %q.\n", q.Answer())
			explain := d.gen.Explain
			if d.deepDive {
				explain = d.gen.ExplainExtended
			}
			if exp, err := explain(ctx, q); err == nil {
				fmt.Println("  " + exp)
			}
		}
		if out.LeveledUp {
			fmt.Printf("⬆ Level up! You are now %s.\n", catalog.RankTitle(out.Progress.Level))
		}

		if d.session != nil {
			score := 0.0
			if correct {
				score = 1.0
			}
			d.session.LogFocusItem(telemetry.FocusItem{
				FocusCategory:        "Grammar",
				FocusItem:            string(q.Preposition),
				PerformanceScore:     &score,
				AttemptsCount:        1,
				ErrorPatternDetected: []string{},
				ContextSentence:      q.Sentence,
			})
			d.session.EndActivity(ctx)
		}
	}

	fmt.Println("Session complete. Run `prepal stats` to see your progress.")
	return nil
}

func printQuestion(seq int, p *store.UserProgress, q *questiongen.Question) {
	fmt.Printf("\n─── Question %d · %s · %d XP ───\n", seq, catalog.RankTitle(p.Level), p.XP)
	fmt.Println(q.Sentence)
	if q.Media.URL != "" {
		fmt.Println("  visual:", q.Media.URL)
	}
	for i, opt := range q.Options {
		fmt.Printf("  %d) %s\n", i+1, opt)
	}
}

// narrateToFile synthesizes unrevealed narration for the sentence and
// writes it next to the other temp files. Returns the file path, or the
// remote URL when the provider serves audio from storage.
func narrateToFile(ctx context.Context, gen *questiongen.Service, q *questiongen.Question) (string, error) {
	m, err := gen.Narrate(ctx, q, false)
	if err != nil {
		return "", err
	}
	if len(m.Data) == 0 {
		return m.URL, nil
	}
	path := filepath.Join(os.TempDir(), "prepal-"+q.ID+audioExt(m.MIMEType))
	if err := os.WriteFile(path, m.Data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func audioExt(mime string) string {
	switch mime {
	case "audio/mpeg":
		return ".mp3"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	default:
		return ".pcm"
	}
}

// readChoice prompts until the learner picks a valid option or quits.
func readChoice(in *bufio.Scanner, options int) (choice int, quit bool) {
	for {
		fmt.Printf("Your answer (1-%d, q to quit): ", options)
		if !in.Scan() {
			return 0, true
		}
		text := strings.TrimSpace(in.Text())
		if strings.EqualFold(text, "q") {
			return 0, true
		}
		n, err := strconv.Atoi(text)
		if err == nil && n >= 1 && n <= options {
			return n, false
		}
	}
}

func categoryFlag(cmd *cobra.Command) (*catalog.Category, error) {
	raw, _ := cmd.Flags().GetString("category")
	if raw == "" {
		return nil, nil
	}
	for _, c := range catalog.Categories() {
		if strings.EqualFold(string(c), raw) {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("unknown category %q", raw)
}
