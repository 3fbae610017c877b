//go:build gosseract

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Gosseract implements the Engine interface with libtesseract linked in-process
type Gosseract struct {
	languages []string
	newClient func() *gosseract.Client
}

// NewGosseract creates a new in-process tesseract engine
func NewGosseract(languages ...string) (*Gosseract, error) {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Gosseract{languages: languages, newClient: gosseract.NewClient}, nil
}

// Name returns the engine name
func (g *Gosseract) Name() string { return "gosseract" }

// Recognize runs OCR on the image with a fresh client; clients are not safe for concurrent use
func (g *Gosseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	path, cleanup, err := prepareImageFile(imagePath)
	if err != nil {
		return "", err
	}
	defer cleanup()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := g.newClient()
	defer c.Close()

	if err := c.SetLanguage(g.languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetImage(path); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}

// Close is a no-op; clients are created per call
func (g *Gosseract) Close() error {
	return nil
}
