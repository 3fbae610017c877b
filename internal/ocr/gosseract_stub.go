//go:build !gosseract

package ocr

import (
	"context"
	"errors"
)

// errNoGosseract is returned when the binary was built without libtesseract bindings
var errNoGosseract = errors.New("gosseract engine unavailable: rebuild with -tags gosseract (requires cgo and libtesseract)")

// Gosseract is a placeholder for builds without the gosseract tag
type Gosseract struct{}

// NewGosseract always fails without the gosseract build tag
func NewGosseract(languages ...string) (*Gosseract, error) {
	return nil, errNoGosseract
}

// Name returns the engine name
func (g *Gosseract) Name() string { return "gosseract" }

// Recognize always fails without the gosseract build tag
func (g *Gosseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	return "", errNoGosseract
}

// Close is a no-op
func (g *Gosseract) Close() error { return nil }
