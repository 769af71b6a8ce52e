// Package errors carries the structured error model shared by the quest
// workers and its mapping onto Zeebe job failures and BPMN errors.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

type ErrorCode string

const (
	ErrCodeInvalidInput           ErrorCode = "INVALID_INPUT"
	ErrCodeAnswerStoreUnavailable ErrorCode = "ANSWER_STORE_UNAVAILABLE"
	ErrCodeCatalogUnavailable     ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeCatalogInvalid         ErrorCode = "CATALOG_INVALID"
	ErrCodeSearchQueryFailed      ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeIndexNotFound          ErrorCode = "INDEX_NOT_FOUND"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the error value workers hand to the ErrorHandler.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError is what the workflow engine sees.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables flattens the error into process variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := make(map[string]interface{}, 4+len(e.ErrorVariables))
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	vars["errorCode"] = e.Code
	vars["errorMessage"] = e.Message
	vars["errorDetails"] = e.Details
	vars["retryable"] = e.Retryable
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

var now = func() time.Time { return time.Now().UTC() }

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: now(),
		cause:     cause,
	}
}

// NewInvalidInputError reports job variables that cannot be evaluated.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid job input", details, false, nil)
}

func NewAnswerStoreUnavailableError(projectID string, err error) *StandardError {
	return newError(ErrCodeAnswerStoreUnavailable, "Answer store unavailable",
		fmt.Sprintf("projectId: %s, error: %v", projectID, err), true, err).
		WithMetadata("projectId", projectID)
}

func NewCatalogUnavailableError(source string, err error) *StandardError {
	return newError(ErrCodeCatalogUnavailable, "Template catalog unavailable",
		fmt.Sprintf("source: %s, error: %v", source, err), true, err).
		WithMetadata("source", source)
}

// NewCatalogInvalidError reports catalog data that can never be decoded.
func NewCatalogInvalidError(details string) *StandardError {
	return newError(ErrCodeCatalogInvalid, "Template catalog data is invalid", details, false, nil)
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Template search failed",
		fmt.Sprintf("index: %s, error: %v", index, err), true, err)
}

func NewIndexNotFoundError(index string) *StandardError {
	return newError(ErrCodeIndexNotFound, "Template search index not found",
		fmt.Sprintf("index: %s", index), false, nil)
}

func NewInternalError(err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return newError(ErrCodeInternal, "Unexpected error", details, false, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns how many times a job failing with code is retried.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeAnswerStoreUnavailable,
		ErrCodeCatalogUnavailable,
		ErrCodeSearchQueryFailed:
		return 3
	default:
		return 0
	}
}

// ConvertToBPMNError maps a StandardError onto the engine's error shape.
// Internal and BPMN codes are identical.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := 0
	if stdErr.Retryable {
		retries = GetRetryCount(stdErr.Code)
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"errorCategory":     GetErrorCategory(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError finds a StandardError anywhere in err's chain, wrapping
// anything else as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "ANSWER"):
		return "ANSWERS"
	case strings.HasPrefix(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
