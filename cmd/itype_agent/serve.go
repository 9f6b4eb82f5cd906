package main

import (
	"fmt"
	"os"

	"github.com/jonathan/itype-engine/internal/config"
	"github.com/jonathan/itype-engine/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort          int
	serveCatalogPath   string
	serveQuestionsPath string
	serveResultsCSV    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for scoring, matching, stability simulation, and full assessment runs.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVarP(&serveCatalogPath, "catalog", "c", config.DefaultCatalogPath, "Path to archetype catalog")
	serveCmd.Flags().StringVarP(&serveQuestionsPath, "questions", "q", config.DefaultQuestionsPath, "Path to question bank")
	serveCmd.Flags().StringVar(&serveResultsCSV, "results-csv", config.DefaultResultsCSV, "Path to the anonymous results log")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Database is optional; assessment storage endpoints answer 503 without it
	databaseURL := os.Getenv("DATABASE_URL")

	// Environment variables fill in for flags the caller did not set.
	if !cmd.Flags().Changed("catalog") {
		if v := os.Getenv("ITYPE_CATALOG"); v != "" {
			serveCatalogPath = v
		}
	}
	if !cmd.Flags().Changed("questions") {
		if v := os.Getenv("ITYPE_QUESTIONS"); v != "" {
			serveQuestionsPath = v
		}
	}
	if !cmd.Flags().Changed("results-csv") {
		if v := os.Getenv("ITYPE_RESULTS_CSV"); v != "" {
			serveResultsCSV = v
		}
	}

	cfg := server.Config{
		Port:          servePort,
		DatabaseURL:   databaseURL,
		CatalogPath:   serveCatalogPath,
		QuestionsPath: serveQuestionsPath,
		ResultsCSV:    serveResultsCSV,
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
