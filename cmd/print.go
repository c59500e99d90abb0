package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coursekit/slidekit/internal/render"
)

var (
	printDeck   string
	printOutput string
)

var printCmd = &cobra.Command{
	Use:   "print [module] [lecture]",
	Short: "Write a printable HTML document of a deck",
	Long:  `Renders every slide of a deck into one printable HTML page, one slide per page.`,
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		loader, locator, err := deckSource(cfg, args, printDeck)
		if err != nil {
			return err
		}
		d, err := loader.Load(context.Background(), locator)
		if err != nil {
			return err
		}

		doc, err := render.Print(d)
		if err != nil {
			return fmt.Errorf("rendering print view: %w", err)
		}

		if printOutput == "" || printOutput == "-" {
			_, err = fmt.Fprint(cmd.OutOrStdout(), doc)
			return err
		}
		if err := os.WriteFile(printOutput, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", printOutput, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d slides to %s\n", len(d.Slides), printOutput)
		return nil
	},
}

func init() {
	printCmd.Flags().StringVar(&printDeck, "deck", "", "deck file or URL (overrides engine.data_url)")
	printCmd.Flags().StringVarP(&printOutput, "output", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(printCmd)
}
