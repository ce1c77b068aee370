package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/github-resume/internal/compile"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile a LaTeX résumé to PDF",
	Long:  "Compiles a .tex file with the first installed engine (pdflatex, then xelatex), running two passes so cross-references settle.",
	RunE:  runCompile,
}

var (
	compileInput   string
	compileOutput  string
	compileEngines []string
	compileTimeout time.Duration
)

func init() {
	compileCmd.Flags().StringVarP(&compileInput, "in", "i", "", "Path to LaTeX file (required)")
	compileCmd.Flags().StringVarP(&compileOutput, "out", "o", "", "Path to output PDF (default: input with .pdf extension)")
	compileCmd.Flags().StringSliceVar(&compileEngines, "engine", compile.DefaultEngines, "Engines to try in order")
	compileCmd.Flags().DurationVar(&compileTimeout, "timeout", compile.DefaultTimeout, "Timeout per engine run")

	if err := compileCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(compileCmd)
}

func runCompile(_ *cobra.Command, _ []string) error {
	source, err := os.ReadFile(compileInput)
	if err != nil {
		return fmt.Errorf("failed to read LaTeX file: %w", err)
	}

	compiler := compile.NewPDFLaTeX(
		compile.WithEngines(compileEngines...),
		compile.WithTimeout(compileTimeout),
	)
	pdf, err := compiler.Compile(context.Background(), string(source))
	if err != nil {
		var compileErr *compile.Error
		if errors.As(err, &compileErr) && compileErr.LogOutput != "" {
			_, _ = fmt.Fprintf(os.Stderr, "%s\n", compileErr.LogOutput)
		}
		return err
	}

	out := compileOutput
	if out == "" {
		out = strings.TrimSuffix(compileInput, filepath.Ext(compileInput)) + ".pdf"
	}
	path, err := writeOutput(filepath.Dir(out), filepath.Base(out), pdf)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Successfully compiled PDF (%d bytes)\n", len(pdf))
	_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", path)
	return nil
}
