package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPI_DefaultsToBadGateway(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewAPI("linear", "Failed to fetch issues", cause)

	assert.Equal(t, KindAPI, err.Kind)
	assert.Equal(t, http.StatusBadGateway, err.StatusCode)
	assert.Equal(t, "linear", err.Plugin)
	assert.Equal(t, "Failed to fetch issues", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Error(), `plugin "linear"`)
}

func TestError_WithoutPluginOrCause(t *testing.T) {
	err := BadRequest("invalid parameter")

	assert.Equal(t, "invalid parameter", err.Error())
	assert.Nil(t, err.Unwrap())
	assert.Equal(t, KindApplication, err.Kind)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "application", KindApplication.String())
	assert.Equal(t, "plugin", KindPlugin.String())
	assert.Equal(t, "api", KindAPI.String())
}

func TestFrom(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, From(nil))
	})

	t.Run("plain error becomes 500", func(t *testing.T) {
		err := From(errors.New("boom"))
		require.NotNil(t, err)
		assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
		assert.Equal(t, "boom", err.Message)
		assert.Equal(t, KindApplication, err.Kind)
	})

	t.Run("wrapped taxonomy error is found", func(t *testing.T) {
		inner := NotFound("missing")
		err := From(fmt.Errorf("lookup: %w", inner))
		assert.Same(t, inner, err)
	})
}

func TestWithPlugin(t *testing.T) {
	t.Run("plain error becomes 500 plugin error", func(t *testing.T) {
		cause := errors.New("kaboom")
		err := WithPlugin(cause, "linear")

		assert.Equal(t, KindPlugin, err.Kind)
		assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
		assert.Equal(t, "linear", err.Plugin)
		assert.Equal(t, "kaboom", err.Message)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("application error is promoted and keeps status", func(t *testing.T) {
		original := BadRequest("bad input")
		err := WithPlugin(original, "linear")

		assert.Equal(t, KindPlugin, err.Kind)
		assert.Equal(t, http.StatusBadRequest, err.StatusCode)
		assert.Equal(t, "linear", err.Plugin)
		assert.Empty(t, original.Plugin, "original must not be mutated")
	})

	t.Run("already tagged error is unchanged", func(t *testing.T) {
		original := NewAPI("github", "upstream failed", errors.New("503"))
		err := WithPlugin(original, "linear")

		assert.Same(t, original, err)
	})

	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, WithPlugin(nil, "linear"))
	})
}

func TestNotFoundHelpersAreDistinguishable(t *testing.T) {
	appErr := AppNotFound("ghost")
	pathErr := PathNotFound("linear", "nope")

	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
	assert.Equal(t, http.StatusNotFound, pathErr.StatusCode)
	assert.NotEqual(t, appErr.Message, pathErr.Message)
	assert.Equal(t, KindApplication, appErr.Kind)
	assert.Equal(t, KindPlugin, pathErr.Kind)
	assert.Contains(t, appErr.Message, "not found")
	assert.Contains(t, pathErr.Message, "not found")
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusCode(NotFound("x")))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("x")))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(&Error{Message: "no status"}))
}
