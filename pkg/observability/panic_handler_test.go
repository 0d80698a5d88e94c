package observability

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustRecover(t *testing.T) {
	assert.Nil(t, MustRecover(nil))

	perr := MustRecover("boom")
	require.NotNil(t, perr)
	assert.Equal(t, "panic: boom", perr.Error())
	assert.NotEmpty(t, perr.Stack)
}

func TestMustRecover_InDefer(t *testing.T) {
	call := func() (err error) {
		defer func() {
			if perr := MustRecover(recover()); perr != nil {
				err = perr
			}
		}()
		panic("handler exploded")
	}

	err := call()
	var perr *PanicError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "handler exploded", perr.Value)
}

func TestRecoverPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(logrus.InfoLevel, FormatJSON, &buf)

	assert.NotPanics(t, func() {
		defer RecoverPanic(logger, "test goroutine")
		panic("oops")
	})
	assert.Contains(t, buf.String(), "PANIC recovered")
	assert.Contains(t, buf.String(), "test goroutine")
}
