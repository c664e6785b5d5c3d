package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		errorCode  string
		message    string
	}{
		{
			name:       "bad request",
			statusCode: http.StatusBadRequest,
			errorCode:  "INVALID_REQUEST",
			message:    "Invalid request format",
		},
		{
			name:       "employee not found",
			statusCode: http.StatusNotFound,
			errorCode:  "EMPLOYEE_NOT_FOUND",
			message:    "Employee not found",
		},
		{
			name:       "internal error",
			statusCode: http.StatusInternalServerError,
			errorCode:  "INTERNAL_SERVER_ERROR",
			message:    "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.statusCode, tt.errorCode, tt.message)

			assert.Equal(t, tt.statusCode, got.StatusCode)
			assert.Equal(t, tt.errorCode, got.ErrorCode)
			assert.Equal(t, tt.message, got.Message)
			assert.Nil(t, got.Details)
			assert.Equal(t, tt.message, got.Error())
		})
	}
}

func TestNewWithDetails(t *testing.T) {
	details := map[string]string{"field": "count"}
	got := NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", details)

	assert.Equal(t, http.StatusBadRequest, got.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", got.ErrorCode)
	assert.Equal(t, details, got.Details)
}

func TestEmployeeNotFoundError(t *testing.T) {
	got := EmployeeNotFoundError("E1042")

	assert.Equal(t, http.StatusNotFound, got.StatusCode)
	assert.Equal(t, "EMPLOYEE_NOT_FOUND", got.ErrorCode)
	assert.Equal(t, "E1042", got.Details)
}

func TestErrValidation(t *testing.T) {
	got := ErrValidation("n", "must be a positive integer")

	assert.Equal(t, http.StatusBadRequest, got.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", got.ErrorCode)

	ve, ok := got.Details.(ValidationError)
	assert.True(t, ok)
	assert.Equal(t, "n", ve.Field)
	assert.Equal(t, "must be a positive integer", ve.Message)
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{"invalid request", ErrInvalidRequest, http.StatusBadRequest, "INVALID_REQUEST"},
		{"employee not found", ErrEmployeeNotFound, http.StatusNotFound, "EMPLOYEE_NOT_FOUND"},
		{"pipeline failed", ErrPipelineFailed, http.StatusInternalServerError, "PIPELINE_FAILED"},
		{"service unavailable", ErrServiceUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
		})
	}
}
