package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// TesseractConfig configures the tesseract command line engine
type TesseractConfig struct {
	Command     string // binary name or absolute path; defaults to "tesseract"
	Language    string // defaults to "eng"
	PSM         int    // page segmentation mode; 0 leaves tesseract's default
	TessdataDir string
}

// Tesseract implements the Engine interface by shelling out to the tesseract binary
type Tesseract struct {
	cfg    TesseractConfig
	runner Runner
}

// NewTesseract creates a new Tesseract engine that runs real commands
func NewTesseract(cfg TesseractConfig) *Tesseract {
	return NewTesseractWithRunner(cfg, execRunner{})
}

// NewTesseractWithRunner creates a new Tesseract engine with a custom runner for testing
func NewTesseractWithRunner(cfg TesseractConfig, runner Runner) *Tesseract {
	if cfg.Command == "" {
		cfg.Command = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &Tesseract{cfg: cfg, runner: runner}
}

// Name returns the engine name
func (t *Tesseract) Name() string { return "tesseract" }

// Recognize runs `tesseract <image> stdout` and returns its output
func (t *Tesseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	path, cleanup, err := prepareImageFile(imagePath)
	if err != nil {
		return "", err
	}
	defer cleanup()

	out, errb, err := t.runner.Run(ctx, t.cfg.Command, t.args(path)...)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("tesseract: %w", ctx.Err())
		}
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return "", fmt.Errorf("tesseract: %w: %s", err, truncate(msg, 512))
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}

	return string(out), nil
}

func (t *Tesseract) args(path string) []string {
	args := []string{path, "stdout", "-l", t.cfg.Language}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	return args
}

// Close is a no-op for the command line engine
func (t *Tesseract) Close() error {
	return nil
}
