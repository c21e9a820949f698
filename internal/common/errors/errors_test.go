package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StandardError
		wantCode string
	}{
		{"invalid tier", NewInvalidTierArgumentError("gold", []string{"free", "basic", "premium"}), "INVALID_SUBSCRIPTION_LEVEL"},
		{"unreachable store", NewRecordStoreUnreachableError("http://store.local/C1/", stderrors.New("refused")), "RECORD_STORE_UNREACHABLE"},
		{"schema violation", NewRecordSchemaViolationError("C1", []string{"SUBSCRIPTION: must be one of"}), "RECORD_SCHEMA_VIOLATION"},
		{"unmapped code", &StandardError{Code: ErrCodeJournalUnavailable, Message: "down"}, "JOURNAL_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(tt.err)

			assert.Equal(t, tt.wantCode, bpmnErr.Code)
			assert.Equal(t, tt.err.Message, bpmnErr.Message)
			assert.Zero(t, bpmnErr.Retries)

			vars := bpmnErr.ToErrorVariables()
			assert.Equal(t, tt.wantCode, vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
		})
	}
}

func TestHasCode_Wrapped(t *testing.T) {
	base := NewRecordStoreBadResponseError("http://store.local/C1/", 200, stderrors.New("unexpected token"))
	wrapped := fmt.Errorf("fetch customer: %w", base)

	assert.True(t, HasCode(wrapped, ErrCodeRecordStoreBadResponse))
	assert.False(t, HasCode(wrapped, ErrCodeRecordStoreUnreachable))
	assert.False(t, HasCode(stderrors.New("plain"), ErrCodeRecordStoreBadResponse))
	assert.False(t, HasCode(nil, ErrCodeInternal))
}

func TestNormalize(t *testing.T) {
	stdErr := NewInvalidDirectionError("sideways")
	assert.Same(t, stdErr, Normalize(stdErr))

	plain := stderrors.New("boom")
	normalized := Normalize(plain)
	require.NotNil(t, normalized)
	assert.Equal(t, ErrCodeInternal, normalized.Code)
	assert.Equal(t, "boom", normalized.Details)
	assert.ErrorIs(t, normalized, plain)
}

func TestRecordStoreUnreachable_Unwraps(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewRecordStoreUnreachableError("http://store.local/C1/", cause)

	assert.True(t, err.Retryable)
	assert.ErrorIs(t, err, cause)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "RECORD_STORE", GetErrorCategory(ErrCodeRecordStoreUnreachable))
	assert.Equal(t, "JOURNAL", GetErrorCategory(ErrCodeJournalUnavailable))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidTierArgument))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInputParsingFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
