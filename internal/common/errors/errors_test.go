package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	sentinel := stderrors.New("LEAD_INDEX_FAILED")

	tests := []struct {
		name          string
		err           error
		wantCode      ErrorCode
		wantRetryable bool
		wantDetails   string
	}{
		{
			name:          "standard error passes through",
			err:           NewLeadValidationError("workEmail: invalid"),
			wantCode:      ErrCodeLeadValidationFailed,
			wantRetryable: false,
			wantDetails:   "workEmail: invalid",
		},
		{
			name:          "wrapped standard error",
			err:           fmt.Errorf("insert: %w", NewDatabaseInsertFailedError(stderrors.New("conn reset"))),
			wantCode:      ErrCodeDatabaseInsertFailed,
			wantRetryable: true,
			wantDetails:   "conn reset",
		},
		{
			name:          "worker sentinel",
			err:           fmt.Errorf("%w: %v", sentinel, "es returned 503"),
			wantCode:      ErrCodeLeadIndexFailed,
			wantRetryable: true,
			wantDetails:   "es returned 503",
		},
		{
			name:          "business sentinel",
			err:           fmt.Errorf("%w: %v", stderrors.New("USAGE_LIMIT_EXCEEDED"), "anonymous_daily_limit"),
			wantCode:      ErrCodeUsageLimitExceeded,
			wantRetryable: false,
			wantDetails:   "anonymous_daily_limit",
		},
		{
			name:          "unknown error",
			err:           stderrors.New("boom"),
			wantCode:      ErrCodeInternal,
			wantRetryable: false,
			wantDetails:   "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdErr := FromError(tt.err)
			require.NotNil(t, stdErr)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.wantRetryable, stdErr.Retryable)
			assert.Equal(t, tt.wantDetails, stdErr.Details)
		})
	}

	assert.Nil(t, FromError(nil))
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewUsageLimitExceededError("ip:10.0.0.1", "anonymous_daily_limit")
	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "USAGE_LIMIT_EXCEEDED", bpmnErr.Code)
	assert.Equal(t, 0, bpmnErr.Retries)
	assert.False(t, bpmnErr.Retryable)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "USAGE_LIMIT_EXCEEDED", vars["errorCode"])
	assert.Equal(t, "USAGE_LIMIT_EXCEEDED", vars["originalErrorCode"])
	assert.Equal(t, "ip:10.0.0.1", vars["identifier"])

	internal := ConvertToBPMNError(NewInternalError(stderrors.New("x")))
	assert.Equal(t, "INTERNAL_ERROR", internal.Code)
}

func TestRemainingRetries(t *testing.T) {
	tests := []struct {
		name       string
		err        *StandardError
		jobRetries int32
		want       int
	}{
		{name: "business error never retries", err: NewLeadValidationError("x"), jobRetries: 5, want: 0},
		{name: "capped by code budget", err: NewLeadIndexFailedError(stderrors.New("x")), jobRetries: 10, want: 3},
		{name: "counts down", err: NewLeadIndexFailedError(stderrors.New("x")), jobRetries: 2, want: 1},
		{name: "last attempt", err: NewLeadIndexFailedError(stderrors.New("x")), jobRetries: 1, want: 0},
		{name: "llm timeout once", err: NewLLMTimeoutError(0), jobRetries: 3, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemainingRetries(tt.err, tt.jobRetries))
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "QUOTA", GetErrorCategory(ErrCodeUsageLimitExceeded))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeLLMTimeout))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeAnalysisSchemaInvalid))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeDuplicateLead))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeLeadIndexFailed))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeLeadValidationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
	assert.True(t, IsRetryableErrorCode(ErrCodeNotificationSendFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeDuplicateLead))
}
