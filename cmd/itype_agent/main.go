// Package main provides the entry point for the innovator identity assessment engine CLI.
package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "itype_agent",
	Short: "Innovator Identity Assessment Engine",
	Long:  "itype_agent scores innovation-trait questionnaires, classifies respondents against an archetype catalog, and measures classification stability with Monte Carlo noise simulation.",
}

func main() {
	// .env supplies local overrides when present.
	_ = godotenv.Load()
	cobra.CheckErr(rootCmd.Execute())
}
