package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mineops/assistant/internal/engine"
	"github.com/mineops/assistant/internal/vectordb"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question about your mining operations from the terminal",
	Long:  `Runs a single question through the full pipeline and prints the answer, recommendations and sources.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().String("language", "en", "response language code")
	queryCmd.Flags().Bool("json", false, "output the full response as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := args[0]

	language, _ := cmd.Flags().GetString("language")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	var store vectordb.VectorStore
	if embedder, err := createEmbedderFromConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\nContinuing without semantic search.\n", err)
	} else if store, err = openVectorStore(cfg, embedder); err != nil {
		return err
	}

	primary, fallback, err := createProviders(cfg)
	if err != nil {
		return err
	}

	eng := engine.New(engine.Options{
		DB:              database,
		Store:           store,
		Primary:         primary,
		Fallback:        fallback,
		KnownSites:      cfg.KnownSites,
		TopK:            cfg.TopK,
		MaxAnswerTokens: cfg.MaxAnswerTokens,
		DefaultLanguage: cfg.DefaultLanguage,
	})

	resp := eng.Query(ctx, question, language)

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Println(resp.Answer)

	if len(resp.Recommendations) > 0 {
		fmt.Println("\nRecommended actions:")
		for _, rec := range resp.Recommendations {
			fmt.Printf("  * %s\n", rec)
		}
	}

	if len(resp.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range resp.Sources {
			if src.Site != "" {
				fmt.Printf("  - %s (%s, %s)\n", src.Source, src.Type, src.Site)
			} else {
				fmt.Printf("  - %s (%s)\n", src.Source, src.Type)
			}
		}
	}

	return nil
}
