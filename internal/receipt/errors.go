package receipt

import (
	"errors"
	"net/http"
)

// Kind classifies a processing failure
type Kind string

const (
	KindValidation Kind = "validation" // bad input from the client
	KindOCR        Kind = "ocr"        // the OCR engine failed or saw nothing
	KindIO         Kind = "io"         // the upload could not be stored
	KindInternal   Kind = "internal"
)

// StatusCode maps the kind to an HTTP status
func (k Kind) StatusCode() int {
	if k == KindValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Retryable reports whether sending the same request again may succeed
func (k Kind) Retryable() bool {
	return k == KindOCR || k == KindIO
}

// Error is a classified processing failure
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func validationError(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func ocrError(message string, err error) error {
	return &Error{Kind: KindOCR, Message: message, Err: err}
}

func ioError(message string, err error) error {
	return &Error{Kind: KindIO, Message: message, Err: err}
}
