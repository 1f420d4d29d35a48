package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeIngestion     = "INGESTION_ERROR"
	ErrCodeNotInit       = "NOT_INITIALIZED"
	ErrCodeConfiguration = "CONFIGURATION_ERROR"
	ErrCodeTransport     = "INFERENCE_TRANSPORT_ERROR"
	ErrCodeParse         = "PARSE_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Ingestion errors: unreadable or unsupported input. Not recoverable,
// surfaced to the caller before any analysis starts.
var (
	ErrUnsupportedFormat = NewDomainError(ErrCodeIngestion, "unsupported document format, expected PDF")
	ErrUnreadableInput   = NewDomainError(ErrCodeIngestion, "document could not be read")
	ErrEmptyDocument     = NewDomainError(ErrCodeIngestion, "document contains no pages")
)

// Setup errors
var (
	ErrStoreNotInitialized = NewDomainError(ErrCodeNotInit, "retrieval store used before initialization")
	ErrMissingDatabaseURL  = NewDomainError(ErrCodeConfiguration, "DATABASE_URL is not configured")
	ErrMissingAPIKey       = NewDomainError(ErrCodeConfiguration, "inference API key is not configured")
)

// Transport and parse errors are recovered at the component boundary and
// replaced with fallback values; they never reach the HTTP layer.
var (
	ErrInferenceUnavailable = NewDomainError(ErrCodeTransport, "inference backend unavailable")
	ErrMalformedResponse    = NewDomainError(ErrCodeParse, "model response is not valid JSON")
)

// Catalog errors
var (
	ErrModelNotFound = NewDomainError(ErrCodeNotFound, "unknown model identifier")
)

// Validation errors
var (
	ErrInvalidTopK     = NewDomainError(ErrCodeValidation, "top_k must be at least 1")
	ErrNoDocuments     = NewDomainError(ErrCodeValidation, "documents list is empty")
	ErrIDCountMismatch = NewDomainError(ErrCodeValidation, "ids length does not match documents length")
)
