package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coursekit/slidekit/internal/config"
)

var initDefaults bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize slidekit configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure slidekit for your course and generates a .slidekit.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if initDefaults {
			if err := config.DefaultConfig().Save(cfgFile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", cfgFile)
			return nil
		}
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	initCmd.Flags().BoolVar(&initDefaults, "defaults", false, "write the default configuration without prompting")
	rootCmd.AddCommand(initCmd)
}
