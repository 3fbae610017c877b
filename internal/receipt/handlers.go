package receipt

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// errorResponse is the JSON body of every failed request
type errorResponse struct {
	Detail    string `json:"detail"`
	Kind      Kind   `json:"kind"`
	Retryable bool   `json:"retryable"`
}

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError renders a processing error with the status its kind maps to
func writeError(w http.ResponseWriter, err error) {
	kind := KindOf(err)
	detail := err.Error()
	if kind != KindValidation {
		detail = "Error processing receipt: " + detail
	}
	writeJSON(w, kind.StatusCode(), errorResponse{
		Detail:    detail,
		Kind:      kind,
		Retryable: kind.Retryable(),
	})
}

// handleHealth reports liveness and the configured engine
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"engine": s.service.EngineName(),
	})
}

// handleUploadReceipt accepts a multipart upload in the "file" field and returns the extracted fields
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, validationError("File is too large. Please compress or resize your image."))
			return
		}
		writeError(w, validationError("Error parsing form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		writeError(w, validationError("No file was provided. Upload the image in the \"file\" field."))
		return
	}
	defer f.Close()

	// Fall back to the extension when the client declared no type
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename)))
	}

	result, err := s.service.ProcessReceipt(r.Context(), header.Filename, contentType, f)
	if err != nil {
		slog.Error("Error processing receipt",
			"filename", header.Filename,
			"content_type", contentType,
			"kind", KindOf(err),
			"error", err,
		)
		writeError(w, err)
		return
	}

	slog.Info("Processed receipt", "filename", header.Filename, "path", result.TempFilePath)
	writeJSON(w, http.StatusOK, result)
}

// handleListUploads returns the upload ledger
func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := s.service.ListUploads()
	if err != nil {
		slog.Error("Error listing uploads", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, uploads)
}

// handleGetUpload returns one ledger record
func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	upload, err := s.service.GetUpload(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Upload not found"})
		return
	}
	writeJSON(w, http.StatusOK, upload)
}
