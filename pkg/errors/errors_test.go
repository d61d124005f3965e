package errors

import (
	"fmt"
	"net/http"
	"testing"

	"watchparty/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestFromDomainMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   ErrorCode
		status int
	}{
		{"invalid room id", domain.ErrInvalidRoomID, ErrCodeInvalidInput, http.StatusBadRequest},
		{"room not found", domain.ErrRoomNotFound, ErrCodeNotFound, http.StatusNotFound},
		{"movie not found", domain.ErrMovieNotFound, ErrCodeNotFound, http.StatusNotFound},
		{"room expired", domain.ErrRoomExpired, ErrCodeRoomExpired, http.StatusGone},
		{"not configured", domain.ErrNotConfigured, ErrCodeNotConfigured, http.StatusServiceUnavailable},
		{"connection lost", domain.ErrConnectionLost, ErrCodeConnectionLost, http.StatusBadGateway},
		{"malformed record", domain.ErrMalformedRecord, ErrCodeInternal, http.StatusInternalServerError},
		{"unknown error", fmt.Errorf("boom"), ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromDomain(tt.err)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.status, appErr.HTTPStatus)
		})
	}
}

func TestFromDomainUnwrapsWrappedSentinels(t *testing.T) {
	wrapped := fmt.Errorf("loading room: %w", domain.ErrRoomExpired)
	appErr := FromDomain(wrapped)
	assert.Equal(t, ErrCodeRoomExpired, appErr.Code)
	assert.ErrorIs(t, appErr, domain.ErrRoomExpired)
}

func TestAppErrorChain(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := WrapError(cause, ErrCodeConnectionLost, "store connection lost", http.StatusBadGateway)

	assert.True(t, IsAppError(err))
	assert.Equal(t, err, GetAppError(fmt.Errorf("outer: %w", err)))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "CONNECTION_LOST")
}

func TestGetAppErrorNil(t *testing.T) {
	assert.False(t, IsAppError(fmt.Errorf("plain")))
	assert.Nil(t, GetAppError(fmt.Errorf("plain")))
}
