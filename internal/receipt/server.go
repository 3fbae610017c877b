package receipt

import (
	"crypto/subtle"
	"net/http"
	"slices"
	"strings"
)

// Server handles HTTP requests for receipt uploads
type Server struct {
	service *Service
	cfg     ServerConfig
	mux     *http.ServeMux
	handler http.Handler
}

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// ServerConfig holds the HTTP surface settings
type ServerConfig struct {
	BasicAuth      BasicAuth
	AllowedOrigins []string // "*" allows any origin
	StaticDir      string   // served under /static/ when set
	MaxUploadBytes int64    // request body limit for uploads; defaults to 50MB
}

const defaultMaxUploadBytes = 50 << 20

// NewServer creates a new Server with default mux
func NewServer(service *Service, cfg ServerConfig) *Server {
	return NewServerWithMux(service, cfg, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, cfg ServerConfig, mux *http.ServeMux) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	s := &Server{
		service: service,
		cfg:     cfg,
		mux:     mux,
	}
	s.registerRoutes()
	s.handler = s.corsMiddleware(s.mux)
	return s
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	if s.cfg.BasicAuth.Username == "" && s.cfg.BasicAuth.Password == "" {
		return true // No auth required if not configured
	}

	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.cfg.BasicAuth.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(s.cfg.BasicAuth.Password)) == 1
	return userOK && passOK
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Receipt OCR"`)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
			return
		}
		next(w, r)
	}
}

// originAllowed reports whether a browser origin may call the API
func (s *Server) originAllowed(origin string) bool {
	return slices.Contains(s.cfg.AllowedOrigins, "*") || slices.Contains(s.cfg.AllowedOrigins, origin)
}

// corsMiddleware adds CORS headers for allowed origins and answers preflight requests
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		allowed := s.originAllowed(origin)
		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Add("Vary", "Origin")

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if !allowed {
				http.Error(w, "Disallowed CORS origin", http.StatusBadRequest)
				return
			}
			// Credentials rule out the "*" wildcard, so echo what was asked for
			w.Header().Set("Access-Control-Allow-Methods", r.Header.Get("Access-Control-Request-Method"))
			if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				w.Header().Set("Access-Control-Allow-Headers", reqHeaders)
			}
			w.Header().Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleStatic serves files from the static directory, including stored uploads
func (s *Server) handleStatic() http.HandlerFunc {
	fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.StaticDir)))
	return func(w http.ResponseWriter, r *http.Request) {
		// Hide in-flight temp files and directory listings
		name := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		if name == "" || strings.HasPrefix(name, ".") {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	}
}

// registerRoutes registers all routes on the server's mux
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /upload_receipt/{$}", s.requireAuth(s.handleUploadReceipt))
	s.mux.HandleFunc("POST /upload_receipt", s.requireAuth(s.handleUploadReceipt))

	s.mux.HandleFunc("GET /uploads/{id}", s.requireAuth(s.handleGetUpload))
	s.mux.HandleFunc("GET /uploads", s.requireAuth(s.handleListUploads))

	if s.cfg.StaticDir != "" {
		s.mux.HandleFunc("GET /static/", s.requireAuth(s.handleStatic()))
	}
}

// ServeHTTP implements http.Handler with CORS applied to every route
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
