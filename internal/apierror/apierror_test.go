package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	nf := NotFound(MsgNoCart)
	assert.Same(t, nf, Wrap(nf))
	assert.Same(t, nf, Wrap(fmt.Errorf("load cart: %w", nf)))

	internal := Wrap(errors.New("gocql: no hosts available in the pool"))
	assert.Equal(t, KindInternal, internal.Kind)
	assert.Equal(t, MsgInternal, internal.Error())

	assert.Nil(t, Wrap(nil))
}

func TestStatus(t *testing.T) {
	cases := map[*Error]int{
		NotFound("x"):       http.StatusNotFound,
		InvalidRequest("x"): http.StatusBadRequest,
		Unauthorized("x"):   http.StatusUnauthorized,
		Forbidden("x"):      http.StatusForbidden,
		Internal():          http.StatusInternalServerError,
		{Kind: KindInvalidRequest, Message: MsgEmailTaken, HTTPStatus: http.StatusOK}: http.StatusOK,
	}
	for err, want := range cases {
		assert.Equal(t, want, err.Status(), err.Kind.String())
	}
}

func TestIs(t *testing.T) {
	assert.True(t, Is(InvalidRequest(MsgEmptyCart), KindInvalidRequest))
	assert.False(t, Is(InvalidRequest(MsgEmptyCart), KindNotFound))
	assert.False(t, Is(errors.New("boom"), KindInvalidRequest))
}
