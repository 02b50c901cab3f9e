package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	in := "From:  Alice\tKhan\n\nTo: Bob"
	assert.Equal(t, "From: Alice Khan To: Bob", Normalize(in))
}

func TestNormalizeStripsNonPrintable(t *testing.T) {
	in := "Rs. ₹1,250.00 \x07sent"
	out := Normalize(in)
	assert.Equal(t, "Rs. 1,250.00 sent", out)
	for _, r := range out {
		assert.True(t, r >= 0x20 && r <= 0x7e, "non-printable rune %q survived", r)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"plain text",
		"  mixed\tws\r\nand é glyphs ✓ ",
		"Transaction ID:\n67d1-99\n",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeNoWhitespaceRuns(t *testing.T) {
	out := Normalize("a \t b \n\n c")
	assert.NotContains(t, out, "  ")
	assert.Equal(t, "a b c", out)
}
