package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coursekit/slidekit/internal/catalog"
	"github.com/coursekit/slidekit/internal/host/terminal"
	"github.com/coursekit/slidekit/internal/storage"
)

var (
	progressYes    bool
	progressMaxAge time.Duration
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Inspect and manage saved lecture progress",
}

var progressShowCmd = &cobra.Command{
	Use:   "show [module] [lecture]",
	Short: "Show saved progress for the course, a module or a lecture",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(cfgRoot, pattern string, store *storage.Store) error {
			out := cmd.OutOrStdout()
			switch len(args) {
			case 2:
				rec := store.GetLectureProgress(args[0], args[1])
				if rec.LastAccessed == 0 {
					fmt.Fprintf(out, "Module %s lecture %s has not been opened.\n", args[0], args[1])
					return nil
				}
				writeRecords(out, []storage.ProgressRecord{rec})
			case 1:
				records := store.GetModuleProgress(args[0])
				if len(records) == 0 {
					fmt.Fprintf(out, "No progress saved for module %s.\n", args[0])
					return nil
				}
				writeRecords(out, records)
			default:
				var records []storage.ProgressRecord
				entries, err := catalog.Discover(cfgRoot, pattern)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
				}
				for _, e := range entries {
					records = append(records, store.GetLectureProgress(e.ModuleID, e.LectureID))
				}
				if len(records) > 0 {
					writeRecords(out, records)
					fmt.Fprintln(out)
				}
				cp := store.GetCourseProgress()
				fmt.Fprintf(out, "Course: %d of %d opened lectures completed (%d%%)\n", cp.Completed, cp.Total, cp.Percentage)
			}
			return nil
		})
	},
}

var progressClearCmd = &cobra.Command{
	Use:   "clear [module lecture]",
	Short: "Forget saved progress for one lecture or for everything",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected no arguments or <module> <lecture>, got %d", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(_, _ string, store *storage.Store) error {
			if len(args) == 2 {
				if !store.RemoveItem(storage.LectureKey(args[0], args[1])) {
					return fmt.Errorf("could not clear progress for module %s lecture %s", args[0], args[1])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared progress for module %s lecture %s.\n", args[0], args[1])
				return nil
			}

			if !progressYes {
				ok, err := terminal.PromptConfirm("Clear all saved progress")
				exitOnError(err)
				if !ok {
					return nil
				}
			}
			if !store.ClearAll() {
				return fmt.Errorf("could not clear progress storage")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared all saved progress.")
			return nil
		})
	},
}

var progressCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove progress entries older than --max-age",
	RunE: func(cmd *cobra.Command, args []string) error {
		if progressMaxAge <= 0 {
			return fmt.Errorf("--max-age must be positive")
		}
		return withStore(func(_, _ string, store *storage.Store) error {
			n := store.CleanupOldData(progressMaxAge)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries older than %s.\n", n, progressMaxAge)
			return nil
		})
	},
}

var progressStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how much storage saved progress uses",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(_, _ string, store *storage.Store) error {
			st := store.Stats()
			out := cmd.OutOrStdout()
			if !st.Supported {
				fmt.Fprintln(out, "Progress storage is not available.")
				return nil
			}
			fmt.Fprintf(out, "Keys:  %d\nBytes: %d\n", st.TotalKeys, st.TotalBytes)
			return nil
		})
	},
}

// withStore opens the configured Progress Store for the duration of fn.
func withStore(fn func(catalogRoot, pattern string, store *storage.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if !store.IsSupported() {
		logger.Warn("progress storage unavailable", zap.String("backend", string(cfg.Storage.Backend)))
	}
	return fn(cfg.Catalog.Root, cfg.Catalog.Pattern, store)
}

func writeRecords(w io.Writer, records []storage.ProgressRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODULE\tLECTURE\tSLIDE\tPROGRESS\tDONE\tLAST OPENED")
	for _, r := range records {
		last := "never"
		if t, ok := r.Accessed(); ok {
			last = t.Local().Format("2006-01-02 15:04")
		}
		slide := "-"
		if r.TotalSlides > 0 {
			slide = fmt.Sprintf("%d/%d", r.CurrentSlide+1, r.TotalSlides)
		}
		done := ""
		if r.Completed {
			done = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d%%\t%s\t%s\n", r.ModuleID, r.LectureID, slide, r.Percentage, done, last)
	}
	tw.Flush()
}

func init() {
	progressClearCmd.Flags().BoolVarP(&progressYes, "yes", "y", false, "do not ask for confirmation")
	progressCleanupCmd.Flags().DurationVar(&progressMaxAge, "max-age", 30*24*time.Hour, "remove entries older than this")
	progressCmd.AddCommand(progressShowCmd, progressClearCmd, progressCleanupCmd, progressStatsCmd)
	rootCmd.AddCommand(progressCmd)
}
