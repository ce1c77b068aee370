package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getBinaryPath returns the path to the resume_agent binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "resume_agent"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/resume_agent ./cmd/resume_agent'", binaryPath)
	}

	return binaryPath
}

func TestValidateInputCommand_Success(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "validate-input", "--json", testdataPath("valid", "resume_input.json"))
	output, err := cmd.CombinedOutput()

	assert.NoError(t, err, "command should succeed")
	assert.Contains(t, string(output), "Validation passed")
}

func TestValidateInputCommand_Failure(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "validate-input", "--json", testdataPath("invalid", "wrong_type.json"))
	output, err := cmd.CombinedOutput()

	assert.Error(t, err, "command should fail")
	assert.Contains(t, string(output), "Validation failed")
	assert.Contains(t, string(output), "profile.followers")
	if exitError, ok := err.(*exec.ExitError); ok {
		assert.Equal(t, 1, exitError.ExitCode(), "should exit with code 1 on validation failure")
	}
}

func TestValidateInputCommand_MissingJSONFlag(t *testing.T) {
	binaryPath := getBinaryPath(t)

	output, err := exec.Command(binaryPath, "validate-input").CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "required flag(s) \"json\" not set")
}

func TestRenderCommand_LaTeX(t *testing.T) {
	binaryPath := getBinaryPath(t)
	outDir := t.TempDir()

	cmd := exec.Command(binaryPath, "render",
		"--input", testdataPath("valid", "resume_input.json"),
		"--out-dir", outDir,
		"--as-of", "2025-03-01")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, string(output))
	assert.Contains(t, string(output), "Successfully rendered latex résumé")

	content, err := os.ReadFile(filepath.Join(outDir, "ada_resume.tex"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `{\Large Ada Lovelace}`)
}

func TestRenderCommand_ConfigFile(t *testing.T) {
	binaryPath := getBinaryPath(t)
	outDir := t.TempDir()
	input, err := filepath.Abs(testdataPath("valid", "resume_input.json"))
	require.NoError(t, err)

	configPath := filepath.Join(t.TempDir(), "config.json")
	cfg := `{"input": "` + filepath.ToSlash(input) + `", "format": "html", "output_dir": "` + filepath.ToSlash(outDir) + `"}`
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0644))

	output, err := exec.Command(binaryPath, "render", "--config", configPath).CombinedOutput()
	require.NoError(t, err, string(output))

	_, err = os.Stat(filepath.Join(outDir, "ada_resume.html"))
	assert.NoError(t, err)
}

func TestRenderCommand_NoInput(t *testing.T) {
	binaryPath := getBinaryPath(t)

	output, err := exec.Command(binaryPath, "render").CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "either --input or --from-github is required")
}

func TestRenderCommand_BadFormat(t *testing.T) {
	binaryPath := getBinaryPath(t)

	output, err := exec.Command(binaryPath, "render",
		"--input", testdataPath("valid", "resume_input.json"),
		"--format", "docx").CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "config error")
}

func TestCompileCommand_MissingInFlag(t *testing.T) {
	binaryPath := getBinaryPath(t)

	output, err := exec.Command(binaryPath, "compile").CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "required flag(s) \"in\" not set")
}

func TestCompileCommand_Real(t *testing.T) {
	binaryPath := getBinaryPath(t)
	if _, err := exec.LookPath("pdflatex"); err != nil {
		t.Skip("pdflatex not installed")
	}
	outDir := t.TempDir()

	output, err := exec.Command(binaryPath, "render",
		"--input", testdataPath("valid", "resume_input.json"),
		"--out-dir", outDir).CombinedOutput()
	require.NoError(t, err, string(output))

	texPath := filepath.Join(outDir, "ada_resume.tex")
	output, err = exec.Command(binaryPath, "compile", "--in", texPath).CombinedOutput()
	require.NoError(t, err, string(output))

	pdf, err := os.ReadFile(filepath.Join(outDir, "ada_resume.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}
