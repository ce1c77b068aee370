package compile

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloLaTeX = `\documentclass{article}
\begin{document}
Hello, World!
\end{document}`

type call struct {
	engine string
	dir    string
}

// fakeRunner records engine runs and writes a PDF when the engine is in produce.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []call
	produce map[string]bool
	output  string
	err     error
}

func (f *fakeRunner) run(_ context.Context, dir, engine, texFile string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{engine: engine, dir: dir})
	f.mu.Unlock()

	if _, err := os.Stat(filepath.Join(dir, texFile)); err != nil {
		return "", err
	}
	if f.produce[engine] {
		if err := os.WriteFile(filepath.Join(dir, outputName), []byte("%PDF-1.5 "+engine), 0o600); err != nil {
			return "", err
		}
	}
	return f.output, f.err
}

func (f *fakeRunner) engines() []string {
	var names []string
	for _, c := range f.calls {
		names = append(names, c.engine)
	}
	return names
}

func installed(names ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, n := range names {
			if n == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func newTestCompiler(t *testing.T, runner *fakeRunner, engines ...string) (*PDFLaTeX, string) {
	t.Helper()
	tmp := t.TempDir()
	c := NewPDFLaTeX(WithRunner(runner.run), WithTempDir(tmp))
	c.lookPath = installed(engines...)
	return c, tmp
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch directories should be removed")
}

func TestPDFLaTeX_RunsPdflatexTwice(t *testing.T) {
	runner := &fakeRunner{produce: map[string]bool{"pdflatex": true}}
	c, tmp := newTestCompiler(t, runner, "pdflatex", "xelatex")

	pdf, err := c.Compile(context.Background(), helloLaTeX)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.5 pdflatex", string(pdf))
	assert.Equal(t, []string{"pdflatex", "pdflatex"}, runner.engines())
	assert.True(t, strings.HasPrefix(filepath.Base(runner.calls[0].dir), "latex-"))
	assertEmptyDir(t, tmp)
}

func TestPDFLaTeX_FallsBackToXelatex(t *testing.T) {
	runner := &fakeRunner{
		produce: map[string]bool{"xelatex": true},
		err:     errors.New("exit status 1"),
	}
	c, tmp := newTestCompiler(t, runner, "pdflatex", "xelatex")

	pdf, err := c.Compile(context.Background(), helloLaTeX)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.5 xelatex", string(pdf))
	assert.Equal(t, []string{"pdflatex", "pdflatex", "xelatex", "xelatex"}, runner.engines())
	assertEmptyDir(t, tmp)
}

func TestPDFLaTeX_NoPDFReturnsErrorWithLog(t *testing.T) {
	runner := &fakeRunner{output: "! Undefined control sequence.\n", err: errors.New("exit status 1")}
	c, tmp := newTestCompiler(t, runner, "pdflatex", "xelatex")

	_, err := c.Compile(context.Background(), `\undefinedcommand`)
	require.Error(t, err)

	var compileErr *Error
	require.ErrorAs(t, err, &compileErr)
	assert.Contains(t, compileErr.Message, "PDF was not generated")
	assert.Contains(t, compileErr.LogOutput, "Undefined control sequence")
	assert.EqualError(t, errors.Unwrap(err), "exit status 1")
	assertEmptyDir(t, tmp)
}

func TestPDFLaTeX_SkipsMissingEngines(t *testing.T) {
	runner := &fakeRunner{produce: map[string]bool{"xelatex": true}}
	c, _ := newTestCompiler(t, runner, "xelatex")

	_, err := c.Compile(context.Background(), helloLaTeX)
	require.NoError(t, err)
	assert.Equal(t, []string{"xelatex", "xelatex"}, runner.engines())
}

func TestPDFLaTeX_Unavailable(t *testing.T) {
	runner := &fakeRunner{}
	c, _ := newTestCompiler(t, runner)

	assert.ErrorIs(t, c.Available(), ErrUnavailable)

	_, err := c.Compile(context.Background(), helloLaTeX)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, runner.calls)
}

func TestPDFLaTeX_EmptySource(t *testing.T) {
	runner := &fakeRunner{}
	c, _ := newTestCompiler(t, runner, "pdflatex")

	_, err := c.Compile(context.Background(), "  \n")
	var compileErr *Error
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "LaTeX source is empty", compileErr.Message)
	assert.Empty(t, runner.calls)
}

func TestPDFLaTeX_PerRunTimeout(t *testing.T) {
	var deadlines []time.Duration
	runner := func(ctx context.Context, dir, _, _ string) (string, error) {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		deadlines = append(deadlines, time.Until(deadline))
		return "", os.WriteFile(filepath.Join(dir, outputName), []byte("%PDF"), 0o600)
	}
	c := NewPDFLaTeX(WithRunner(runner), WithTempDir(t.TempDir()), WithTimeout(5*time.Second))
	c.lookPath = installed("pdflatex", "xelatex")

	_, err := c.Compile(context.Background(), helloLaTeX)
	require.NoError(t, err)
	require.Len(t, deadlines, 2)
	for _, d := range deadlines {
		assert.LessOrEqual(t, d, 5*time.Second)
		assert.Greater(t, d, time.Duration(0))
	}
}

func TestPDFLaTeX_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := func(context.Context, string, string, string) (string, error) {
		cancel()
		return "", context.Canceled
	}
	tmp := t.TempDir()
	c := NewPDFLaTeX(WithRunner(runner), WithTempDir(tmp))
	c.lookPath = installed("pdflatex")

	_, err := c.Compile(ctx, helloLaTeX)
	assert.ErrorIs(t, err, context.Canceled)
	assertEmptyDir(t, tmp)
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail("short"))

	long := strings.Repeat("a", maxLogOutput) + "end"
	got := tail(long)
	assert.Len(t, got, maxLogOutput)
	assert.True(t, strings.HasSuffix(got, "end"))
}

func TestPDFLaTeX_RealEngine(t *testing.T) {
	if _, err := exec.LookPath("pdflatex"); err != nil {
		t.Skip("pdflatex not available, skipping compilation test")
	}

	pdf, err := NewPDFLaTeX(WithTempDir(t.TempDir())).Compile(context.Background(), helloLaTeX)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))
}
