// Package errors provides the standardized error taxonomy shared by the CLI and the job workers.
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

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Argument errors: raised synchronously, never turned into an outcome.
const (
	ErrCodeInvalidTierArgument ErrorCode = "INVALID_TIER_ARGUMENT"
	ErrCodeInvalidDirection    ErrorCode = "INVALID_DIRECTION"
)

// Infrastructure and input errors
const (
	ErrCodeRecordStoreUnreachable ErrorCode = "RECORD_STORE_UNREACHABLE"
	ErrCodeRecordStoreBadResponse ErrorCode = "RECORD_STORE_BAD_RESPONSE"
	ErrCodeRecordSchemaViolation  ErrorCode = "RECORD_SCHEMA_VIOLATION"
	ErrCodeJournalUnavailable     ErrorCode = "JOURNAL_UNAVAILABLE"
	ErrCodeInputParsingFailed     ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeInputValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the transport or decoding error behind the StandardError.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
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

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidTierArgumentError reports a subscription level outside the defined tiers.
func NewInvalidTierArgumentError(level string, allowed []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidTierArgument,
		Message:   fmt.Sprintf("Invalid subscription level '%s'.", level),
		Details:   fmt.Sprintf("allowed levels: %s", strings.Join(allowed, ", ")),
		Retryable: false,
		Metadata:  map[string]interface{}{"subscriptionLevel": level},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidDirectionError reports a direction that is neither upgrade nor downgrade.
func NewInvalidDirectionError(direction string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidDirection,
		Message:   fmt.Sprintf("Invalid direction '%s'.", direction),
		Details:   "allowed directions: upgrade, downgrade",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordStoreUnreachableError wraps a transport failure talking to the record store.
func NewRecordStoreUnreachableError(url string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordStoreUnreachable,
		Message:   "Unable to connect to record store",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"url": url},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewRecordStoreBadResponseError reports a success status carrying an undecodable payload.
func NewRecordStoreBadResponseError(url string, status int, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordStoreBadResponse,
		Message:   "Record store returned an unreadable payload",
		Details:   fmt.Sprintf("status: %d, error: %s", status, err.Error()),
		Retryable: false,
		Metadata:  map[string]interface{}{"url": url, "status": status},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewRecordSchemaViolationError reports a mutated record that must not be written.
func NewRecordSchemaViolationError(customerID string, violations []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordSchemaViolation,
		Message:   "Customer record violates the record schema",
		Details:   strings.Join(violations, "; "),
		Retryable: false,
		Metadata:  map[string]interface{}{"customerId": customerID},
		Timestamp: time.Now().UTC(),
	}
}

// NewJournalUnavailableError wraps a failure writing or reading the transition journal.
func NewJournalUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeJournalUnavailable,
		Message:   "Transition journal unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInputParsingFailedError reports job variables that could not be decoded.
func NewInputParsingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputParsingFailed,
		Message:   "Failed to parse job variables",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInputValidationFailedError reports job variables that fail the input schema.
func NewInputValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the codes modelled in BPMN boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidTierArgument:    "INVALID_SUBSCRIPTION_LEVEL",
	ErrCodeInvalidDirection:       "INVALID_DIRECTION",
	ErrCodeRecordStoreUnreachable: "RECORD_STORE_UNREACHABLE",
	ErrCodeRecordStoreBadResponse: "RECORD_STORE_BAD_RESPONSE",
	ErrCodeRecordSchemaViolation:  "RECORD_SCHEMA_VIOLATION",
	ErrCodeInputParsingFailed:     "INPUT_PARSING_FAILED",
	ErrCodeInputValidationFailed:  "VALIDATION_FAILED",
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
// Subscription changes are never retried, so Retries is always zero.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   0,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError returns the StandardError in err's chain, if any.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// Normalize wraps arbitrary errors into an INTERNAL_ERROR StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "RECORD_STORE"):
		return "RECORD_STORE"
	case strings.Contains(codeStr, "JOURNAL"):
		return "JOURNAL"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") ||
		strings.Contains(codeStr, "SCHEMA") || strings.Contains(codeStr, "PARSING"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
