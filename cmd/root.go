package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "mineops",
	Short: "Natural-language assistant for mining operations data",
	Long: `Mineops answers natural-language questions about mining operations by
combining semantic search over indexed operational documents with live
queries against the relational store, and renders answers with KPIs,
charts and recommended actions.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// API keys are conventionally kept in a local .env file.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".mineops.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
