package utils

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies failures of the analysis pipeline.
type ErrorKind string

const (
	KindNoFileProvided       ErrorKind = "NoFileProvided"
	KindUnsupportedMediaType ErrorKind = "UnsupportedMediaType"
	KindExtractionFailed     ErrorKind = "ExtractionFailed"
	KindDocumentTooLarge     ErrorKind = "DocumentTooLarge"
	KindModelCallFailed      ErrorKind = "ModelCallFailed"
	KindEmptyModelResponse   ErrorKind = "EmptyModelResponse"
	KindMalformedModelOutput ErrorKind = "MalformedModelOutput"
	KindPersistenceFailed    ErrorKind = "PersistenceFailed"
	KindNotFound             ErrorKind = "NotFound"
	KindBadRequest           ErrorKind = "BadRequest"
	KindUnexpected           ErrorKind = "UnexpectedError"
)

// AppError carries the HTTP status and the client-facing message for a failure.
type AppError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError of the given kind.
func NewAppError(kind ErrorKind, status int, message string, err error) *AppError {
	return &AppError{
		Kind:       kind,
		StatusCode: status,
		Message:    message,
		Err:        err,
	}
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(KindBadRequest, http.StatusBadRequest, message, nil)
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(KindNotFound, http.StatusNotFound, message, nil)
}

func NewInternalError(message string) *AppError {
	return NewAppError(KindUnexpected, http.StatusInternalServerError, message, nil)
}
