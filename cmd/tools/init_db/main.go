// Command init_db creates the assessments table and its indexes.
//
// This is a one-time setup script for result persistence; the engine itself
// never creates tables.
//
// Usage:
//
//	go run cmd/tools/init_db/main.go
//
// Requires DATABASE_URL environment variable to be set.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

const assessmentsDDL = `
CREATE TABLE IF NOT EXISTS assessments (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    primary_archetype TEXT NOT NULL,
    stability DOUBLE PRECISION NOT NULL,
    shadow_archetype TEXT NOT NULL,
    shadow_probability DOUBLE PRECISION NOT NULL,
    scores JSONB NOT NULL,
    probabilities JSONB NOT NULL,
    distances JSONB,
    energies JSONB,
    raw_answers JSONB,
    trials INTEGER NOT NULL,
    noise DOUBLE PRECISION NOT NULL,
    policy TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

var indexDDL = []string{
	`CREATE INDEX IF NOT EXISTS idx_assessments_primary_archetype ON assessments (primary_archetype)`,
	`CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments (created_at DESC)`,
}

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "ERROR: DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to ping database: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Assessment Storage Setup ===")
	fmt.Println()

	if _, err := pool.Exec(ctx, assessmentsDDL); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to create assessments table: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("  ✓ assessments table ready")

	for _, ddl := range indexDDL {
		if _, err := pool.Exec(ctx, ddl); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Failed to create index: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Println("  ✓ indexes ready")

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM assessments`).Scan(&count); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to query assessments: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Printf("Stored assessments: %d\n", count)
	fmt.Println()
	fmt.Println("=== Setup Complete ===")
}
