package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coursekit/slidekit/internal/catalog"
	"github.com/coursekit/slidekit/internal/deck"
)

var (
	validateDeck string
	validateAll  bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [module] [lecture]",
	Short: "Check decks for malformed slides",
	Long: `Loads a deck (or with --all every deck in the catalog) and reports slides
that would render incompletely: missing ids, unknown types, bad quizzes and
invalid threat levels.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		ctx := context.Background()

		type target struct {
			loader  *deck.Loader
			locator string
		}
		var targets []target
		if validateAll {
			entries, err := catalog.Discover(cfg.Catalog.Root, cfg.Catalog.Pattern)
			if err != nil {
				return err
			}
			loader := deck.NewLoader(cfg.Catalog.Root, nil)
			for _, e := range entries {
				targets = append(targets, target{loader, e.Path})
			}
		} else {
			loader, locator, err := deckSource(cfg, args, validateDeck)
			if err != nil {
				return err
			}
			targets = append(targets, target{loader, locator})
		}

		failed := 0
		for _, t := range targets {
			d, err := t.loader.Load(ctx, t.locator)
			if err != nil {
				fmt.Fprintf(out, "FAIL %s: %v\n", t.locator, err)
				failed++
				continue
			}
			issues := deck.Validate(d)
			if len(issues) == 0 {
				fmt.Fprintf(out, "ok   %s (%d slides)\n", t.locator, len(d.Slides))
				continue
			}
			failed++
			fmt.Fprintf(out, "FAIL %s (%d issues)\n", t.locator, len(issues))
			for _, is := range issues {
				fmt.Fprintf(out, "     %s\n", is)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d decks have problems", failed, len(targets))
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateDeck, "deck", "", "deck file or URL (overrides engine.data_url)")
	validateCmd.Flags().BoolVar(&validateAll, "all", false, "validate every deck in the catalog")
	rootCmd.AddCommand(validateCmd)
}
