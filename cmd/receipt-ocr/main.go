package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/receipt-ocr/internal/ocr"
	"github.com/zombor/receipt-ocr/internal/receipt"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	cfg, fs, err := parseConfig(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		if errors.Is(err, ff.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if cfg.showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.logLevel})))

	if err := run(cfg); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config) error {
	// Initialize OCR engine based on type
	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	// Initialize storage
	slog.Info("Initializing storage...", "dir", cfg.uploadDir, "naming", cfg.naming)
	store, err := receipt.NewLocalStorage(cfg.uploadDir, cfg.naming)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	opts := receipt.Options{
		Extractor:  receipt.Extractor{TaxAmount: cfg.taxAmount},
		OCRTimeout: cfg.ocrTimeout,
	}

	// Initialize the optional upload ledger
	if cfg.dbPath != "" {
		slog.Info("Initializing database...", "path", cfg.dbPath)
		db, err := receipt.NewBoltDB(cfg.dbPath)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		defer db.Close()
		opts.DB = db
	}

	receiptService := receipt.NewService(store, engine, opts)

	server := receipt.NewServer(receiptService, receipt.ServerConfig{
		BasicAuth: receipt.BasicAuth{
			Username: cfg.authUser,
			Password: cfg.authPass,
		},
		AllowedOrigins: cfg.allowedOrigins,
		StaticDir:      cfg.staticDir,
		MaxUploadBytes: cfg.maxUploadBytes,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.port),
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	slog.Info("Server started",
		"address", fmt.Sprintf("http://localhost%s", httpServer.Addr),
		"engine", engine.Name(),
		"version", version,
	)
	if cfg.authUser != "" || cfg.authPass != "" {
		slog.Info("Basic auth enabled", "user", cfg.authUser)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// newEngine builds the configured OCR engine
func newEngine(cfg *config) (ocr.Engine, error) {
	switch cfg.engine {
	case "tesseract":
		slog.Info("Initializing tesseract engine...", "cmd", cfg.tesseract.Command, "lang", cfg.tesseract.Language)
		return ocr.NewTesseract(cfg.tesseract), nil
	case "gosseract":
		slog.Info("Initializing gosseract engine...", "lang", cfg.tesseract.Language)
		engine, err := ocr.NewGosseract(strings.Split(cfg.tesseract.Language, "+")...)
		if err != nil {
			return nil, fmt.Errorf("initializing gosseract: %w", err)
		}
		return engine, nil
	case "gemini":
		slog.Info("Initializing Gemini engine...", "model", cfg.geminiModel)
		engine, err := ocr.NewGemini(cfg.geminiKey, cfg.geminiModel)
		if err != nil {
			return nil, fmt.Errorf("initializing Gemini: %w", err)
		}
		return engine, nil
	case "ollama":
		slog.Info("Initializing Ollama engine...", "url", cfg.ollamaURL, "model", cfg.ollamaModel)
		engine, err := ocr.NewOllama(cfg.ollamaURL, cfg.ollamaModel)
		if err != nil {
			return nil, fmt.Errorf("initializing Ollama: %w", err)
		}
		return engine, nil
	default:
		return nil, fmt.Errorf("invalid engine %q", cfg.engine)
	}
}
