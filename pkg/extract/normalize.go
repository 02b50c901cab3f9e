package extract

import (
	"regexp"
	"strings"
)

var (
	reNonPrintable = regexp.MustCompile(`[^\x20-\x7E\s]+`)
	reWhitespace   = regexp.MustCompile(`\s+`)
)

// Normalize strips OCR noise from raw recognized text: runs of characters
// outside the printable 7-bit range become a single space (Tesseract renders
// logos and non-Latin glyphs as garbage bytes), and all whitespace runs
// collapse to one space. Idempotent.
func Normalize(raw string) string {
	s := reNonPrintable.ReplaceAllString(raw, " ")
	s = reWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
