package code

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodeError(t *testing.T) {
	err := NewCodeError(0, "failed %d", 3)
	status, ok := StatusOf(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "500 failed 3", err.Error())

	assert.Equal(t, "100% done", NewCodeError(http.StatusOK, "100% done").(*CodeError).Message)
}

func TestStatusOf(t *testing.T) {
	status, ok := StatusOf(fmt.Errorf("wrap: %w", NewNotfoundError("person")))
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, status)

	_, ok = StatusOf(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestNewBadRequestError(t *testing.T) {
	type req struct {
		Name string `validate:"required"`
	}
	verr := validator.New().Struct(req{})
	require.Error(t, verr)

	err := NewBadRequestError(verr)
	status, _ := StatusOf(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Requirement Name required ", err.(*CodeError).Message)

	assert.Equal(t, "bad", NewBadRequestError("bad").(*CodeError).Message)
}

func TestConstructors(t *testing.T) {
	for want, err := range map[int]error{
		http.StatusUnauthorized: NewUnauthorizedError("x"),
		http.StatusForbidden:    NewForbiddenError("x"),
		http.StatusNotFound:     NewNotfoundError("x"),
		http.StatusConflict:     NewConflictError("x"),
	} {
		status, ok := StatusOf(err)
		assert.True(t, ok)
		assert.Equal(t, want, status)
	}
}
