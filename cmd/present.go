package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coursekit/slidekit/internal/engine"
	"github.com/coursekit/slidekit/internal/host/terminal"
	"github.com/coursekit/slidekit/internal/input"
	"github.com/coursekit/slidekit/internal/progress"
)

var (
	presentDeck     string
	presentPrintDir string
	presentNoResume bool
)

var presentCmd = &cobra.Command{
	Use:   "present [module] [lecture]",
	Short: "Present a lecture deck in the terminal",
	Long: `Loads a deck and presents it slide by slide. With a module and lecture
the deck is found in the course catalog; otherwise --deck or engine.data_url
is used. Progress is saved as you go and offered for resume next time.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		loader, locator, err := deckSource(cfg, args, presentDeck)
		if err != nil {
			return err
		}

		store, closeStore, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		ecfg := cfg.Engine
		ecfg.DataURL = locator

		hostOpts := terminal.Options{
			Out:      cmd.OutOrStdout(),
			Reporter: progress.NewReporter(os.Stderr),
			PrintDir: presentPrintDir,
			Keys:     input.NewKeyboard(ecfg),
			Logger:   logger,
		}
		if presentNoResume {
			hostOpts.Confirm = func(string) (bool, error) { return false, nil }
		}
		host := terminal.New(hostOpts)

		eng, err := engine.New(engine.Options{
			Config: ecfg,
			Loader: loader,
			Store:  store,
			Host:   host,
			Logger: logger,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := eng.Load(ctx); err != nil {
			return err
		}
		defer eng.Unload()

		title := locator
		if d := eng.Deck(); d != nil && d.Metadata.Title != "" {
			title = d.Metadata.Title
		}
		host.Attach(eng, title)
		if err := eng.Start(ctx); err != nil {
			return err
		}
		logger.Debug("presentation started",
			zap.String("session", eng.ID()),
			zap.String("deck", locator),
			zap.Int("slides", eng.State().Total),
		)

		done := make(chan error, 1)
		go func() { done <- host.Run(ctx, eng, cmd.InOrStdin()) }()

		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "\nClosing presentation...")
			return nil
		}
	},
}

func init() {
	presentCmd.Flags().StringVar(&presentDeck, "deck", "", "deck file or URL (overrides engine.data_url)")
	presentCmd.Flags().StringVar(&presentPrintDir, "print-dir", "", "directory for printable HTML (default: temp dir)")
	presentCmd.Flags().BoolVar(&presentNoResume, "no-resume", false, "always start at the first slide")
	rootCmd.AddCommand(presentCmd)
}
