package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mineops/assistant/internal/engine"
	"github.com/mineops/assistant/internal/server"
	"github.com/mineops/assistant/internal/tts"
	"github.com/mineops/assistant/internal/vectordb"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Starts the mineops HTTP server, exposing the query endpoint, KPI and sidebar data feeds, and the WebSocket chat channel.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		// Semantic search is optional: without embeddings the engine
		// answers from the relational store alone.
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
			TTS:             tts.NewGoogleTTS(),
			KnownSites:      cfg.KnownSites,
			TopK:            cfg.TopK,
			MaxAnswerTokens: cfg.MaxAnswerTokens,
			DefaultLanguage: cfg.DefaultLanguage,
		})

		srv := server.New(server.Config{
			Port:     cfg.Server.Port,
			AllowAll: cfg.Server.AllowAll,
		}, database, eng)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			fmt.Fprintf(os.Stderr, "\nReceived %s, shutting down...\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
