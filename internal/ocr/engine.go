package ocr

import "context"

// Engine turns a stored image into plain text
type Engine interface {
	// Recognize runs OCR on the image at imagePath and returns the recognized text
	Recognize(ctx context.Context, imagePath string) (string, error)
	// Name identifies the engine in logs and health output
	Name() string
	// Close releases any resources held by the engine
	Close() error
}

// transcribePrompt is shared by the vision-model engines so they behave like a plain OCR pass
const transcribePrompt = `You are an OCR engine. Transcribe every piece of text visible in this receipt image exactly as printed.

Rules:
- Preserve the original line breaks and the top-to-bottom reading order
- Keep numbers, currency symbols, dates and punctuation exactly as they appear
- Do not summarize, translate, correct or explain anything
- Do not wrap the output in markdown code blocks
- If the image contains no readable text, return an empty response`
