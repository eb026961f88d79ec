package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeNoResults   ErrorType = "no_results"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// User-facing messages for conditions that are reported instead of aborting
// the run.
const (
	MsgMissingInput  = "Please provide all required inputs."
	MsgInvalidRange  = "Start date cannot be later than end date."
	MsgInvalidDate   = "Dates must use the format YYYY-MM-DDTHH:MM:SSZ."
	MsgNoImagesFound = "No images found for the specified date range."
)

// Error represents a typed error raised by the downloader
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Code != 0 {
		msg = fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	} else if e.Type != ErrorTypeValidation && e.Type != ErrorTypeNoResults {
		msg = fmt.Sprintf("%s error: %s", e.Type, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new typed error
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Wrap wraps err with a type and message. A nil err yields nil.
func Wrap(err error, errorType ErrorType, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Type: errorType, Message: message, Err: err}
}

// TypeOf returns the type of the first *Error in err's chain, or
// ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err's chain contains an *Error of the given type
func IsType(err error, errorType ErrorType) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Type == errorType
}

// IsUserFacing reports whether err should be shown to the user as a message
// rather than treated as a failure of the run.
func IsUserFacing(err error) bool {
	return IsType(err, ErrorTypeValidation) || IsType(err, ErrorTypeNoResults)
}

// FromStatus classifies a non-success HTTP status code
func FromStatus(statusCode int, url string) *Error {
	var errorType ErrorType
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		errorType = ErrorTypeAuth
	case statusCode == http.StatusNotFound:
		errorType = ErrorTypeNotFound
	case statusCode == http.StatusTooManyRequests:
		errorType = ErrorTypeRateLimit
	case statusCode >= 500:
		errorType = ErrorTypeServerError
	default:
		errorType = ErrorTypeUnknown
	}
	return &Error{
		Type:    errorType,
		Message: fmt.Sprintf("unexpected status %d for %s", statusCode, url),
		Code:    statusCode,
	}
}
