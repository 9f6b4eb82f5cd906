package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/itype-engine/internal/schemas"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON file against a JSON Schema",
	Long:  "Validate a JSON document (catalog, question bank, answer set, or assessment result) against one of the shipped JSON Schemas.",
	RunE:  runValidate,
}

var (
	validateSchemaFile string
	validateJSONFile   string
)

func init() {
	validateCmd.Flags().StringVar(&validateSchemaFile, "schema", "", "Path to JSON Schema file (required)")
	validateCmd.Flags().StringVar(&validateJSONFile, "json", "", "Path to JSON file to validate (required)")
	_ = validateCmd.MarkFlagRequired("schema")
	_ = validateCmd.MarkFlagRequired("json")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
	err := schemas.ValidateJSON(validateSchemaFile, validateJSONFile)
	if err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			_, _ = fmt.Fprintf(os.Stdout, "Validation failed:\n")
			for _, fieldErr := range validationErr.Errors {
				_, _ = fmt.Fprintf(os.Stdout, "  - %s: %s\n", fieldErr.Field, fieldErr.Message)
			}
			os.Exit(1)
		}
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Validation passed: %s\n", validateJSONFile)
	return nil
}
