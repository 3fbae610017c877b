package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/zombor/receipt-ocr/internal/ocr"
	"github.com/zombor/receipt-ocr/internal/receipt"
)

const envPrefix = "RECEIPT_OCR"

var engines = []string{"tesseract", "gosseract", "gemini", "ollama"}

// config is the parsed command line and environment
type config struct {
	port           int
	uploadDir      string
	staticDir      string
	allowedOrigins []string
	engine         string
	tesseract      ocr.TesseractConfig
	geminiKey      string
	geminiModel    string
	ollamaURL      string
	ollamaModel    string
	ocrTimeout     time.Duration
	naming         receipt.Naming
	taxAmount      bool
	maxUploadBytes int64
	dbPath         string
	authUser       string
	authPass       string
	logLevel       slog.Level
	showVersion    bool
}

// parseConfig reads flags from args and RECEIPT_OCR_* variables from the environment.
// getenv supplies fallbacks that live outside the prefix, such as GEMINI_API_KEY.
func parseConfig(args []string, getenv func(string) string) (*config, *ff.FlagSet, error) {
	fs := ff.NewFlagSet("receipt-ocr")
	var (
		port           = fs.IntLong("port", 8000, "HTTP server port")
		uploadDir      = fs.StringLong("upload-dir", "static/temp_receipt", "Directory uploaded images are saved to")
		staticDir      = fs.StringLong("static-dir", "static", "Directory served under /static/ (empty disables)")
		allowedOrigins = fs.StringLong("allowed-origins", "http://localhost:4200", "Comma separated CORS origins; '*' allows any")
		engine         = fs.StringLong("engine", "tesseract", "OCR engine: "+strings.Join(engines, ", "))
		tesseractCmd   = fs.StringLong("tesseract-cmd", "tesseract", "tesseract binary name or path")
		tesseractLang  = fs.StringLong("tesseract-lang", "eng", "tesseract language(s), e.g. eng+hin")
		tesseractPSM   = fs.IntLong("tesseract-psm", 0, "tesseract page segmentation mode (0 keeps the default)")
		tessdataDir    = fs.StringLong("tessdata-dir", "", "tesseract tessdata directory")
		geminiKey      = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel    = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL      = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel    = fs.StringLong("ollama-model", "llava", "Ollama vision model name")
		ocrTimeout     = fs.DurationLong("ocr-timeout", 2*time.Minute, "Per request OCR deadline (0 disables)")
		naming         = fs.StringLong("naming", "original", "Stored file naming: original, uuid or sha256")
		taxAmount      = fs.BoolLong("tax-amount", "Capture the tax amount instead of the tax label")
		maxUploadMB    = fs.IntLong("max-upload-mb", 50, "Maximum upload size in megabytes")
		dbPath         = fs.StringLong("db", "", "Upload ledger database file (empty disables)")
		authUser       = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass       = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		logLevel       = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix(envPrefix)); err != nil {
		return nil, fs, err
	}

	cfg := &config{
		port:      *port,
		uploadDir: *uploadDir,
		staticDir: *staticDir,
		engine:    strings.ToLower(strings.TrimSpace(*engine)),
		tesseract: ocr.TesseractConfig{
			Command:     *tesseractCmd,
			Language:    *tesseractLang,
			PSM:         *tesseractPSM,
			TessdataDir: *tessdataDir,
		},
		geminiKey:   *geminiKey,
		geminiModel: *geminiModel,
		ollamaURL:   *ollamaURL,
		ollamaModel: *ollamaModel,
		ocrTimeout:  *ocrTimeout,
		taxAmount:   *taxAmount,
		dbPath:      *dbPath,
		authUser:    *authUser,
		authPass:    *authPass,
		showVersion: *showVersion,
	}
	if cfg.showVersion {
		return cfg, fs, nil
	}

	for _, origin := range strings.Split(*allowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.allowedOrigins = append(cfg.allowedOrigins, origin)
		}
	}

	if !isKnownEngine(cfg.engine) {
		return nil, fs, fmt.Errorf("invalid engine %q: valid engines are %s", *engine, strings.Join(engines, ", "))
	}
	if cfg.engine == "gemini" && cfg.geminiKey == "" {
		cfg.geminiKey = getenv("GEMINI_API_KEY")
		if cfg.geminiKey == "" {
			return nil, fs, fmt.Errorf("gemini API key is required: set --gemini-key or GEMINI_API_KEY")
		}
	}

	n, err := receipt.ParseNaming(*naming)
	if err != nil {
		return nil, fs, err
	}
	cfg.naming = n

	if *maxUploadMB <= 0 {
		return nil, fs, fmt.Errorf("invalid max-upload-mb %d: must be positive", *maxUploadMB)
	}
	cfg.maxUploadBytes = int64(*maxUploadMB) << 20

	if *ocrTimeout < 0 {
		return nil, fs, fmt.Errorf("invalid ocr-timeout %s: must not be negative", *ocrTimeout)
	}

	if err := cfg.logLevel.UnmarshalText([]byte(*logLevel)); err != nil {
		return nil, fs, fmt.Errorf("invalid log-level %q: %w", *logLevel, err)
	}

	return cfg, fs, nil
}

func isKnownEngine(name string) bool {
	for _, e := range engines {
		if e == name {
			return true
		}
	}
	return false
}
