package compile

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChromePrinter_DefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, NewChromePrinter(0).timeout)
}

func TestChromePrinter_Compile(t *testing.T) {
	p := NewChromePrinter(DefaultTimeout)
	if err := p.Available(); err != nil {
		t.Skip("chrome not available, skipping print test")
	}

	pdf, err := p.Compile(context.Background(), "<html><body><h1>Ada Lovelace</h1></body></html>")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))
}

func TestChromePrinter_UnavailableError(t *testing.T) {
	p := NewChromePrinter(DefaultTimeout)
	if p.Available() == nil {
		t.Skip("chrome installed")
	}
	_, err := p.Compile(context.Background(), "<html></html>")
	assert.ErrorIs(t, err, ErrUnavailable)
}
