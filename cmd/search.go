package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coursekit/slidekit/internal/host/terminal"
	"github.com/coursekit/slidekit/internal/search"
)

var searchDeck string

var searchCmd = &cobra.Command{
	Use:   "search <query> [module] [lecture]",
	Short: "Search the slides of a deck",
	Long:  `Finds slides whose title, content or notes contain the query, ignoring case.`,
	Args:  cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		loader, locator, err := deckSource(cfg, args[1:], searchDeck)
		if err != nil {
			return err
		}
		d, err := loader.Load(context.Background(), locator)
		if err != nil {
			return err
		}

		query := strings.TrimSpace(args[0])
		results := search.Build(d).Query(query)
		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintf(out, "No slides match %q.\n", query)
			return nil
		}
		for _, r := range results {
			fmt.Fprintf(out, "%3d  %s\n     %s\n", r.Index+1, r.Title, terminal.Text(r.Excerpt))
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchDeck, "deck", "", "deck file or URL (overrides engine.data_url)")
	rootCmd.AddCommand(searchCmd)
}
