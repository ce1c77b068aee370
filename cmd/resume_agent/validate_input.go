package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/github-resume/internal/schemas"
)

var validateInputCmd = &cobra.Command{
	Use:   "validate-input",
	Short: "Validate an input bundle against its JSON schema",
	Long:  "Checks a profile/repos/languages bundle against the built-in schema, or against --schema when given. Exits with code 1 when validation fails.",
	RunE:  runValidateInput,
}

var (
	validateInputJSON   string
	validateInputSchema string
)

func init() {
	validateInputCmd.Flags().StringVarP(&validateInputJSON, "json", "j", "", "Path to JSON file (required)")
	validateInputCmd.Flags().StringVarP(&validateInputSchema, "schema", "s", "", "Path to a JSON schema (default: built-in input bundle schema)")

	if err := validateInputCmd.MarkFlagRequired("json"); err != nil {
		panic(fmt.Sprintf("failed to mark json flag as required: %v", err))
	}

	rootCmd.AddCommand(validateInputCmd)
}

func runValidateInput(_ *cobra.Command, _ []string) error {
	err := validateInputFile(validateInputJSON, validateInputSchema)
	if err == nil {
		_, _ = fmt.Fprintln(os.Stdout, "Validation passed")
		return nil
	}

	var validationErr *schemas.ValidationError
	if errors.As(err, &validationErr) {
		_, _ = fmt.Fprintln(os.Stderr, "Validation failed:")
		for _, msg := range validationErr.Messages() {
			_, _ = fmt.Fprintf(os.Stderr, "  - %s\n", msg)
		}
		os.Exit(1)
	}
	return err
}

func validateInputFile(jsonPath, schemaPath string) error {
	if schemaPath != "" {
		return schemas.ValidateJSON(schemaPath, jsonPath)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	return schemas.ValidateResumeInput(data)
}
