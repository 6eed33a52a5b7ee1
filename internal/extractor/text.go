package extractor

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeText folds compatibility characters (ligatures, full-width digits)
// that PDF fonts and OCR tend to emit, then drops blank lines.
func normalizeText(text string) string {
	text = norm.NFKC.String(text)

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\x00", "")

	lines := strings.Split(text, "\n")

	var cleanedLines []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.TrimSpace(strings.Join(cleanedLines, "\n"))
}
