package service

import "strings"

// mathReplacer canonicalizes math notation that OCR tends to produce.
// The rules never re-match each other's output, so order is irrelevant.
var mathReplacer = strings.NewReplacer(
	"X", "x",
	"×", "*",
	"÷", "/",
	"—", "-",
	"–", "-",
	"²", "^2",
	"³", "^3",
)

// NormalizeMathText maps extracted problem text to its canonical form.
// Total function: any input yields a usable output, which is passed to
// the provider verbatim without further validation.
func NormalizeMathText(text string) string {
	return strings.TrimSpace(mathReplacer.Replace(text))
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
