package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHTTPStatus(t *testing.T) {
	tests := map[Kind]int{
		KindUnauthorized:        http.StatusUnauthorized,
		KindInvalidCredential:   http.StatusUnauthorized,
		KindForbidden:           http.StatusForbidden,
		KindNotFound:            http.StatusNotFound,
		KindJobNotFound:         http.StatusNotFound,
		KindConflict:            http.StatusConflict,
		KindValidationFailed:    http.StatusBadRequest,
		KindInvalidChoice:       http.StatusBadRequest,
		KindOutOfRange:          http.StatusUnprocessableEntity,
		KindUnsupportedDocument: http.StatusUnprocessableEntity,
		KindProviderUnavailable: http.StatusServiceUnavailable,
		KindUpstreamUnavailable: http.StatusServiceUnavailable,
		KindTokenIssuanceFailed: http.StatusInternalServerError,
		KindInternal:            http.StatusInternalServerError,
	}
	for kind, status := range tests {
		assert.Equal(t, status, kind.HTTPStatus(), kind)
	}
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Forbidden("owner mismatch"))

	assert.ErrorIs(t, err, ErrForbidden)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestUserMessageHidesDetails(t *testing.T) {
	assert.Equal(t, "you are not permitted to modify this job", Forbidden("job 42 belongs to b@x.com").UserMessage())
	assert.Equal(t, "invalid email or password", NewError(KindInvalidCredential, "no such user", nil).UserMessage())
	assert.NotContains(t, Internal("db down", errors.New("dial tcp")).UserMessage(), "dial")
	assert.Equal(t, "title is required", FieldError(KindValidationFailed, "title", "%s is required", "title").UserMessage())
}

func TestAsErrorWrapsForeignErrors(t *testing.T) {
	cause := errors.New("boom")
	de := AsError(cause)
	assert.Equal(t, KindInternal, de.Kind)
	assert.ErrorIs(t, de, cause)
	assert.NotEmpty(t, de.Stack)
}

func TestKindFromStatus(t *testing.T) {
	assert.Equal(t, KindUnauthorized, KindFromStatus(http.StatusUnauthorized))
	assert.Equal(t, KindForbidden, KindFromStatus(http.StatusForbidden))
	assert.Equal(t, KindNotFound, KindFromStatus(http.StatusNotFound))
	assert.Equal(t, KindConflict, KindFromStatus(http.StatusConflict))
	assert.Equal(t, KindUpstreamUnavailable, KindFromStatus(http.StatusBadGateway))
	assert.Equal(t, KindInternal, KindFromStatus(http.StatusTeapot))
}

func TestIdentityClaimsNormalize(t *testing.T) {
	c, err := IdentityClaims{Email: "  A@X.com ", Name: ""}.Normalize()
	assert.NoError(t, err)
	assert.Equal(t, "a@x.com", c.Email)
	assert.Equal(t, "User", c.Name)

	_, err = IdentityClaims{Email: "not-an-email"}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = IdentityClaims{}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidCredential)
}
