package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mineops/assistant/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize mineops configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure providers, models and the data directory, and generates a .mineops.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
