package backend

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/ironsheep/labelingo/internal/annotate"
)

// Detector locates text regions in a screenshot.
type Detector interface {
	// Name is the configuration tag of the backend, e.g. "tesseract".
	Name() string

	// Detect returns the text found in img with bounding boxes in img's pixel
	// coordinates. lang is the expected source language code, "" for unknown.
	Detect(ctx context.Context, img image.Image, lang string) ([]annotate.DetectedElement, error)
}

// Translator reads a screenshot and translates its text into targetLang.
type Translator interface {
	Name() string
	Translate(ctx context.Context, img image.Image, targetLang string) (*Scene, error)
}

// Scene is a translation backend's reading of one screenshot.
type Scene struct {
	SourceLanguage string                     `json:"source_language,omitempty"`
	Title          string                     `json:"title,omitempty"`
	Elements       []annotate.TextTranslation `json:"elements"`

	// Located holds the same elements with bounding boxes, for backends that can
	// locate text as well as translate it. It is used when no separate detector runs.
	Located []annotate.DetectedElement `json:"located,omitempty"`
}

// Sentinel errors.
var (
	ErrMissingAPIKey = errors.New("API key not set")
	ErrNoJSON        = errors.New("no JSON object in response")
	ErrEmptyResponse = errors.New("empty response")
)

// Error reports a failed backend call.
type Error struct {
	Backend   string
	Op        string
	Err       error
	Transient bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether another attempt may succeed.
func (e *Error) Retryable() bool { return e.Transient }

// Wrap returns err as an *Error. It returns nil for a nil err.
func Wrap(backend, op string, err error, transient bool) error {
	if err == nil {
		return nil
	}
	return &Error{Backend: backend, Op: op, Err: err, Transient: transient}
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// TransientStatus reports whether an HTTP status from a hosted API is worth
// retrying: timeouts, rate limits and server errors.
func TransientStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return true
	case code >= 500:
		return true
	default:
		return false
	}
}

// IsTransient classifies an error from a hosted API client. HTTP statuses decide
// when the client exposes one; network errors are transient; cancellation is not.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var coded interface{ HTTPCode() int }
	if errors.As(err, &coded) {
		return TransientStatus(coded.HTTPCode())
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return TransientStatus(gerr.Code)
	}
	var nerr net.Error
	return errors.As(err, &nerr)
}
