package ocr

import (
	"strings"
)

// cleanTranscript strips the wrapping vision models tend to add around a transcription
func cleanTranscript(text string) string {
	text = strings.TrimSpace(text)

	// Remove opening and closing markdown code fences
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx != -1 {
			text = text[idx+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(text)
}
