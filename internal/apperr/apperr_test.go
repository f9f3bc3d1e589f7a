package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/geocoder89/bootcamphub/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	tests := map[apperr.Kind]int{
		apperr.KindValidation:     http.StatusBadRequest,
		apperr.KindAuthentication: http.StatusUnauthorized,
		apperr.KindAuthorization:  http.StatusForbidden,
		apperr.KindNotFound:       http.StatusNotFound,
		apperr.KindDelivery:       http.StatusInternalServerError,
		apperr.KindInternal:       http.StatusInternalServerError,
	}

	for kind, want := range tests {
		assert.Equal(t, want, kind.Status(), kind.String())
	}
}

func TestFrom(t *testing.T) {
	cause := errors.New("smtp: connection refused")

	wrapped := fmt.Errorf("forgot password: %w", apperr.Delivery("Email could not be sent", cause))
	got := apperr.From(wrapped)
	assert.Equal(t, apperr.KindDelivery, got.Kind)
	assert.Equal(t, "Email could not be sent", got.Message)
	assert.ErrorIs(t, got, cause)

	plain := apperr.From(errors.New("pq: something internal"))
	assert.Equal(t, apperr.KindInternal, plain.Kind)
	assert.Equal(t, "Server Error", plain.Message)
}
