package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	tests := []struct {
		name    string
		err     *AppError
		wantMsg string
	}{
		{
			name:    "without cause",
			err:     NewAppValidationError("station url is required", nil),
			wantMsg: "[VALIDATION] station url is required",
		},
		{
			name:    "with cause",
			err:     NewNetworkError("geocode batch failed", fmt.Errorf("connection reset")),
			wantMsg: "[NETWORK] geocode batch failed: connection reset",
		},
		{
			name:    "not found",
			err:     NewNotFoundError("model_data.csv"),
			wantMsg: "[NOT_FOUND] model_data.csv not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestAppError_UnwrapAndType(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("write artifact: %w", NewStorageError("write failed", cause).WithContext("file", "la_counts.csv"))

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsType(err, ErrTypeStorage))
	assert.False(t, IsType(err, ErrTypeJoin))
	assert.False(t, IsType(cause, ErrTypeStorage))

	var appErr *AppError
	if assert.ErrorAs(t, err, &appErr) {
		assert.Equal(t, "la_counts.csv", appErr.Context["file"])
	}
}

func TestAPIError(t *testing.T) {
	err := ErrValidation("metric", "unknown metric")
	assert.Equal(t, 400, err.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", err.ErrorCode)
	assert.Equal(t, ValidationError{Field: "metric", Message: "unknown metric"}, err.Details)

	nf := NotFoundError("profile")
	assert.Equal(t, "profile not found", nf.Error())
}

func TestPredefinedErrors(t *testing.T) {
	assert.Equal(t, 429, ErrRateLimitExceeded.StatusCode)
	assert.Equal(t, 503, ErrServiceUnavailable.StatusCode)
	assert.Equal(t, "SERVICE_UNAVAILABLE", ErrServiceUnavailable.ErrorCode)
}
