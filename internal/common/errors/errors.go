// internal/common/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	// Intake
	ErrCodeLeadValidationFailed ErrorCode = "LEAD_VALIDATION_FAILED"
	ErrCodeUsageLimitExceeded   ErrorCode = "USAGE_LIMIT_EXCEEDED"
	ErrCodeUsageCheckFailed     ErrorCode = "USAGE_CHECK_FAILED"

	// Intelligence
	ErrCodeAnalysisSchemaInvalid ErrorCode = "ANALYSIS_SCHEMA_INVALID"
	ErrCodeLLMTimeout            ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMSynthesisFailed    ErrorCode = "LLM_SYNTHESIS_FAILED"

	// Delivery
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeDuplicateLead            ErrorCode = "DUPLICATE_LEAD"
	ErrCodeLeadIndexFailed          ErrorCode = "LEAD_INDEX_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeResponseValidationFailed ErrorCode = "RESPONSE_VALIDATION_FAILED"
	ErrCodeInternal                 ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error and returns it for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

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

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewLeadValidationError(details string) *StandardError {
	return newError(ErrCodeLeadValidationFailed, "Lead submission failed validation", details, false)
}

func NewUsageLimitExceededError(identifier, reason string) *StandardError {
	return newError(ErrCodeUsageLimitExceeded, "Daily usage limit reached", reason, false).
		WithMetadata("identifier", identifier)
}

func NewUsageCheckFailedError(err error) *StandardError {
	return newError(ErrCodeUsageCheckFailed, "Usage store unavailable", err.Error(), true)
}

func NewAnalysisSchemaInvalidError(details string) *StandardError {
	return newError(ErrCodeAnalysisSchemaInvalid, "AI analysis does not match schema", details, false)
}

func NewLLMTimeoutError(timeout time.Duration) *StandardError {
	return newError(ErrCodeLLMTimeout, "AI analysis timed out", fmt.Sprintf("timeout: %s", timeout), true)
}

func NewLLMSynthesisFailedError(err error) *StandardError {
	return newError(ErrCodeLLMSynthesisFailed, "AI analysis failed", err.Error(), true)
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Failed to persist lead", err.Error(), true)
}

func NewDuplicateLeadError(leadID string) *StandardError {
	return newError(ErrCodeDuplicateLead, "Lead already recorded", fmt.Sprintf("leadId: %s", leadID), false)
}

func NewLeadIndexFailedError(err error) *StandardError {
	return newError(ErrCodeLeadIndexFailed, "Failed to index lead", err.Error(), true)
}

func NewNotificationSendFailedError(kind string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Failed to send notification",
		fmt.Sprintf("kind: %s, error: %s", kind, err.Error()), true)
}

func NewResponseValidationFailedError(details string) *StandardError {
	return newError(ErrCodeResponseValidationFailed, "Response failed schema validation", details, false)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// BPMNErrorMapping maps error codes to the error codes caught by boundary
// events in the lead process.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeLeadValidationFailed:     "LEAD_VALIDATION_FAILED",
	ErrCodeUsageLimitExceeded:       "USAGE_LIMIT_EXCEEDED",
	ErrCodeUsageCheckFailed:         "USAGE_CHECK_FAILED",
	ErrCodeAnalysisSchemaInvalid:    "ANALYSIS_SCHEMA_INVALID",
	ErrCodeLLMTimeout:               "LLM_TIMEOUT",
	ErrCodeLLMSynthesisFailed:       "LLM_SYNTHESIS_FAILED",
	ErrCodeDatabaseInsertFailed:     "DATABASE_INSERT_FAILED",
	ErrCodeDuplicateLead:            "DUPLICATE_LEAD",
	ErrCodeLeadIndexFailed:          "LEAD_INDEX_FAILED",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
	ErrCodeResponseValidationFailed: "RESPONSE_VALIDATION_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeUsageCheckFailed,
		ErrCodeLLMSynthesisFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeLeadIndexFailed,
		ErrCodeNotificationSendFailed:
		return 3 // technical failures

	case ErrCodeLLMTimeout:
		return 1

	default:
		return 0 // business errors
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// FromError normalizes any error into a StandardError. Worker sentinels are
// created as errors.New("CODE") and wrapped as "CODE: details", so a known
// code prefix is enough to recover the code.
func FromError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	msg := err.Error()
	head, details, _ := strings.Cut(msg, ":")
	code := ErrorCode(strings.TrimSpace(head))
	if _, known := BPMNErrorMapping[code]; known {
		return &StandardError{
			Code:      code,
			Message:   strings.ReplaceAll(strings.ToLower(string(code)), "_", " "),
			Details:   strings.TrimSpace(details),
			Retryable: GetRetryCount(code) > 0,
			Timestamp: time.Now().UTC(),
		}
	}
	return NewInternalError(err)
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "USAGE"):
		return "QUOTA"
	case strings.Contains(codeStr, "LLM") || strings.Contains(codeStr, "ANALYSIS"):
		return "AI"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "DUPLICATE"):
		return "DATABASE"
	case strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
