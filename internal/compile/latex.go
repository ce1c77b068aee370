// Package compile turns generated documents into PDFs using external
// engines: a LaTeX distribution for .tex sources and headless Chrome for
// the HTML preview.
package compile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTimeout bounds a single engine run.
	DefaultTimeout = 30 * time.Second
	// DefaultPasses is how many times each engine runs so cross-references settle.
	DefaultPasses = 2

	sourceName   = "resume.tex"
	outputName   = "resume.pdf"
	maxLogOutput = 4 << 10
)

// DefaultEngines are tried in order until one produces a PDF.
var DefaultEngines = []string{"pdflatex", "xelatex"}

// Compiler turns document source into a binary document.
type Compiler interface {
	Compile(ctx context.Context, source string) ([]byte, error)
}

// Runner executes one engine pass over texFile inside dir and returns the
// combined output.
type Runner func(ctx context.Context, dir, engine, texFile string) (string, error)

// PDFLaTeX compiles LaTeX source in a scratch directory that is removed
// after every call.
type PDFLaTeX struct {
	engines  []string
	passes   int
	timeout  time.Duration
	tempDir  string
	run      Runner
	lookPath func(string) (string, error)
}

// Option configures a PDFLaTeX compiler.
type Option func(*PDFLaTeX)

// WithEngines replaces the engine fallback order.
func WithEngines(engines ...string) Option {
	return func(c *PDFLaTeX) { c.engines = engines }
}

// WithTimeout sets the per-run timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *PDFLaTeX) { c.timeout = d }
}

// WithTempDir sets the parent of the scratch directories.
func WithTempDir(dir string) Option {
	return func(c *PDFLaTeX) { c.tempDir = dir }
}

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(c *PDFLaTeX) { c.run = r }
}

// NewPDFLaTeX creates a compiler using pdflatex with an xelatex fallback.
func NewPDFLaTeX(opts ...Option) *PDFLaTeX {
	c := &PDFLaTeX{
		engines:  DefaultEngines,
		passes:   DefaultPasses,
		timeout:  DefaultTimeout,
		run:      execRunner,
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available reports ErrUnavailable when none of the engines is on PATH.
func (c *PDFLaTeX) Available() error {
	if len(c.installedEngines()) == 0 {
		return fmt.Errorf("%w: none of %s found in PATH", ErrUnavailable, strings.Join(c.engines, ", "))
	}
	return nil
}

func (c *PDFLaTeX) installedEngines() []string {
	var found []string
	for _, engine := range c.engines {
		if _, err := c.lookPath(engine); err == nil {
			found = append(found, engine)
		}
	}
	return found
}

// Compile writes source to a fresh directory, runs each engine in turn
// until a PDF appears, and returns the PDF bytes.
func (c *PDFLaTeX) Compile(ctx context.Context, source string) ([]byte, error) {
	if strings.TrimSpace(source) == "" {
		return nil, &Error{Message: "LaTeX source is empty"}
	}

	engines := c.installedEngines()
	if len(engines) == 0 {
		return nil, fmt.Errorf("%w: none of %s found in PATH", ErrUnavailable, strings.Join(c.engines, ", "))
	}

	dir, err := c.scratchDir()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("failed to remove compile directory", "dir", dir, "error", err)
		}
	}()

	if err := os.WriteFile(filepath.Join(dir, sourceName), []byte(source), 0o600); err != nil {
		return nil, &Error{Message: "failed to write LaTeX source", Cause: err}
	}

	var logOutput strings.Builder
	var lastErr error
	for _, engine := range engines {
		for pass := 0; pass < c.passes; pass++ {
			out, err := c.runPass(ctx, dir, engine)
			logOutput.WriteString(out)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, &Error{Message: "compilation cancelled", LogOutput: tail(logOutput.String()), Cause: ctxErr}
			}
			if err != nil {
				lastErr = err
			}
		}

		pdf, err := os.ReadFile(filepath.Join(dir, outputName))
		if err == nil && len(pdf) > 0 {
			return pdf, nil
		}
		slog.Warn("LaTeX engine produced no PDF", "engine", engine)
	}

	return nil, &Error{
		Message:   "LaTeX compilation failed: PDF was not generated",
		LogOutput: tail(logOutput.String()),
		Cause:     lastErr,
	}
}

func (c *PDFLaTeX) scratchDir() (string, error) {
	parent := c.tempDir
	if parent == "" {
		parent = os.TempDir()
	}
	dir := filepath.Join(parent, "latex-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", &Error{Message: fmt.Sprintf("failed to create working directory: %s", dir), Cause: err}
	}
	return dir, nil
}

func (c *PDFLaTeX) runPass(ctx context.Context, dir, engine string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.run(runCtx, dir, engine, sourceName)
}

// execRunner runs the engine non-interactively with shell escape disabled,
// since the source may come straight from a request body.
func execRunner(ctx context.Context, dir, engine, texFile string) (string, error) {
	cmd := exec.CommandContext(ctx, engine, "-interaction=nonstopmode", "-no-shell-escape", texFile)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func tail(s string) string {
	if len(s) <= maxLogOutput {
		return s
	}
	return s[len(s)-maxLogOutput:]
}
