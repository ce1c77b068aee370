package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsername(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "mixed case and punctuation", input: "  A_B-c123!!", want: "ab-c123"},
		{name: "empty", input: "", want: ""},
		{name: "only disallowed", input: "@@@ ___", want: ""},
		{name: "unicode dropped", input: "jöhn-doe", want: "jhn-doe"},
		{name: "already clean", input: "octocat", want: "octocat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Username(tt.input))
		})
	}
}

func TestUsername_Truncates(t *testing.T) {
	long := strings.Repeat("a", 60)
	got := Username(long)
	assert.Len(t, got, MaxUsernameLength)
}

func TestUsername_TruncatesAfterStripping(t *testing.T) {
	// Stripped characters do not count toward the limit.
	input := strings.Repeat("a_", 45)
	got := Username(input)
	assert.Equal(t, strings.Repeat("a", MaxUsernameLength), got)
}

func TestFreeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "strips markup characters", input: `  <b>"Tom" & 'Jerry'</b>  `, want: "bTom  Jerry/b"},
		{name: "keeps latex specials", input: "50% of $5", want: "50% of $5"},
		{name: "empty", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FreeText(tt.input))
		})
	}
}

func TestFreeText_TruncatesRunes(t *testing.T) {
	input := strings.Repeat("é", 1200)
	got := FreeText(input)
	assert.Equal(t, MaxFreeTextLength, len([]rune(got)))
}
