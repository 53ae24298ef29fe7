package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_WrappedError(t *testing.T) {
	base := NotFound("catalog.Get", "event %s not found", "42")
	wrapped := fmt.Errorf("reserve: %w", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrUpstreamUnavailable))
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestError_MessageIncludesCause(t *testing.T) {
	err := Upstream("catalog.Search", "request failed", errors.New("connection refused"))

	assert.Equal(t, "catalog.Search: request failed: connection refused", err.Error())
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindConfiguration:       http.StatusInternalServerError,
		KindUnauthorized:        http.StatusUnauthorized,
		KindNotFound:            http.StatusNotFound,
		KindInvalidQuantity:     http.StatusUnprocessableEntity,
		KindPriceUnavailable:    http.StatusUnprocessableEntity,
		KindInvalidSignature:    http.StatusBadRequest,
		KindUpstreamUnavailable: http.StatusBadGateway,
		KindInvalidRequest:      http.StatusBadRequest,
		KindUnknown:             http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(kind), string(kind))
	}
}
