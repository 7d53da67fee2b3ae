package model

import (
	"errors"
	"fmt"
	"net/http"
)

// ImportError is the base error of the import domain
type ImportError struct {
	Code    string // unique code, e.g. "IMPORT_SESSION_NOT_FOUND"
	Message string // human-readable message
	Err     error  // underlying error
}

// Error implements error interface
func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap allows errors.Is / errors.As through the wrapper
func (e *ImportError) Unwrap() error {
	return e.Err
}

// Is matches on Code so sentinels compare equal to factory-built errors
func (e *ImportError) Is(target error) bool {
	var t *ImportError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// ============================================
// ERROR CODES
// ============================================

const (
	CodeUnknownImportType = "UNKNOWN_IMPORT_TYPE"
	CodeEmptyFile         = "IMPORT_EMPTY_FILE"
	CodeUnsupportedFile   = "IMPORT_UNSUPPORTED_FILE"
	CodeParseFile         = "IMPORT_PARSE_ERROR"
	CodeTooManyRows       = "IMPORT_TOO_MANY_ROWS"
	CodeReferenceFetch    = "IMPORT_REFERENCE_FETCH_FAILED"
	CodeExistingKeysFetch = "IMPORT_EXISTING_KEYS_FETCH_FAILED"
	CodeSessionNotFound   = "IMPORT_SESSION_NOT_FOUND"
	CodeSessionForbidden  = "IMPORT_SESSION_FORBIDDEN"
	CodeInvalidTransition = "IMPORT_INVALID_STATE_TRANSITION"
	CodeSessionStore      = "IMPORT_SESSION_STORE_ERROR"
	CodeEnqueue           = "IMPORT_ENQUEUE_FAILED"
	CodeListLogs          = "IMPORT_LIST_LOGS_FAILED"
	CodeInvalidPageParams = "INVALID_PAGE_PARAMS"
)

// ============================================
// SENTINELS (compare with errors.Is)
// ============================================

var (
	ErrUnknownImportType = &ImportError{Code: CodeUnknownImportType, Message: "Unknown import type"}
	ErrEmptyFile         = &ImportError{Code: CodeEmptyFile, Message: "File has no data rows"}
	ErrUnsupportedFile   = &ImportError{Code: CodeUnsupportedFile, Message: "Unsupported file format"}
	ErrTooManyRows       = &ImportError{Code: CodeTooManyRows, Message: "File exceeds the row limit"}
	ErrReferenceFetch    = &ImportError{Code: CodeReferenceFetch, Message: "Failed to load reference data"}
	ErrExistingKeysFetch = &ImportError{Code: CodeExistingKeysFetch, Message: "Failed to load existing records"}
	ErrSessionNotFound   = &ImportError{Code: CodeSessionNotFound, Message: "Import session not found or expired"}
	ErrSessionForbidden  = &ImportError{Code: CodeSessionForbidden, Message: "Import session belongs to another user"}
	ErrInvalidTransition = &ImportError{Code: CodeInvalidTransition, Message: "Invalid import state transition"}
)

// ============================================
// ERROR FACTORY FUNCTIONS
// ============================================

func NewUnknownImportType(raw string) *ImportError {
	return &ImportError{
		Code:    CodeUnknownImportType,
		Message: fmt.Sprintf("Unknown import type: %s", raw),
	}
}

func NewUnsupportedFile(fileName string) *ImportError {
	return &ImportError{
		Code:    CodeUnsupportedFile,
		Message: fmt.Sprintf("Unsupported file format: %s (expected .xlsx, .xls or .csv)", fileName),
	}
}

func NewParseFileError(err error) *ImportError {
	return &ImportError{
		Code:    CodeParseFile,
		Message: "Failed to read spreadsheet",
		Err:     err,
	}
}

func NewTooManyRows(rows, limit int) *ImportError {
	return &ImportError{
		Code:    CodeTooManyRows,
		Message: fmt.Sprintf("File has %d rows, limit is %d", rows, limit),
	}
}

func NewReferenceFetchError(err error) *ImportError {
	return &ImportError{
		Code:    CodeReferenceFetch,
		Message: "Failed to load reference data (CCA)",
		Err:     err,
	}
}

func NewExistingKeysFetchError(err error) *ImportError {
	return &ImportError{
		Code:    CodeExistingKeysFetch,
		Message: "Failed to load existing records",
		Err:     err,
	}
}

func NewInvalidTransition(from, to RunState) *ImportError {
	return &ImportError{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("Cannot move import run from %s to %s", from, to),
	}
}

func NewSessionStoreError(err error) *ImportError {
	return &ImportError{
		Code:    CodeSessionStore,
		Message: "Failed to access import session",
		Err:     err,
	}
}

func NewEnqueueError(err error) *ImportError {
	return &ImportError{
		Code:    CodeEnqueue,
		Message: "Failed to schedule import write",
		Err:     err,
	}
}

func NewListLogsError(err error) *ImportError {
	return &ImportError{
		Code:    CodeListLogs,
		Message: "Failed to list import logs",
		Err:     err,
	}
}

func NewInvalidPageParams(page, pageSize int) *ImportError {
	return &ImportError{
		Code:    CodeInvalidPageParams,
		Message: fmt.Sprintf("Invalid pagination params: page=%d, pageSize=%d", page, pageSize),
	}
}

// ============================================
// HTTP MAPPING
// ============================================

// GetErrorCode returns the domain code or UNKNOWN_ERROR
func GetErrorCode(err error) string {
	var impErr *ImportError
	if errors.As(err, &impErr) {
		return impErr.Code
	}
	return "UNKNOWN_ERROR"
}

// GetErrorResponse maps an error to (status, message, code) for handlers
func GetErrorResponse(err error) (statusCode int, message string, errorCode string) {
	var impErr *ImportError
	if !errors.As(err, &impErr) {
		return http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR"
	}

	switch impErr.Code {
	case CodeUnknownImportType, CodeEmptyFile, CodeUnsupportedFile, CodeParseFile, CodeInvalidPageParams:
		return http.StatusBadRequest, impErr.Message, impErr.Code
	case CodeTooManyRows:
		return http.StatusRequestEntityTooLarge, impErr.Message, impErr.Code
	case CodeSessionNotFound:
		return http.StatusNotFound, impErr.Message, impErr.Code
	case CodeSessionForbidden:
		return http.StatusForbidden, impErr.Message, impErr.Code
	case CodeInvalidTransition:
		return http.StatusConflict, impErr.Message, impErr.Code
	case CodeReferenceFetch, CodeExistingKeysFetch:
		return http.StatusBadGateway, impErr.Message, impErr.Code
	default:
		return http.StatusInternalServerError, impErr.Message, impErr.Code
	}
}
