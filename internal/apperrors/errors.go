package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrPrediction    = errors.New("prediction error")
)

// ConfigurationError reports an empty, malformed or mismatched artifact.
// It is fatal for the serving process.
type ConfigurationError struct {
	Kind    string // vocabulary | classifier | advice
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// Configuration creates a configuration error for the given artifact kind.
func Configuration(kind, message string, err error) *ConfigurationError {
	return &ConfigurationError{Kind: kind, Message: message, Err: err}
}

// PredictionError is a per-request failure. The request that produced it
// gets an error response; the process keeps serving.
type PredictionError struct {
	Message    string
	HTTPStatus int
	Err        error
}

func (e *PredictionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}

func (e *PredictionError) Is(target error) bool {
	return target == ErrPrediction
}

// BadInput creates a prediction error caused by the caller's input.
func BadInput(message string) *PredictionError {
	return &PredictionError{
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Internal creates a prediction error for an unexpected failure.
func Internal(err error) *PredictionError {
	return &PredictionError{
		Message:    "prediction failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// StatusOf returns the HTTP status to report for err.
func StatusOf(err error) int {
	var predErr *PredictionError
	if errors.As(err, &predErr) && predErr.HTTPStatus != 0 {
		return predErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// Message returns the human-readable text to show a caller for err.
func Message(err error) string {
	var predErr *PredictionError
	if errors.As(err, &predErr) {
		return predErr.Error()
	}
	return "internal server error"
}
