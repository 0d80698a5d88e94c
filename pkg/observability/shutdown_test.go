package observability

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	return NewLogger(logrus.DebugLevel, FormatText, &bytes.Buffer{})
}

func TestNewShutdownManager_DefaultTimeout(t *testing.T) {
	sm := NewShutdownManager(testLogger(), nil, 0)
	assert.Equal(t, 30*time.Second, sm.shutdownTimeout)
}

func TestShutdown_RunsFuncsInReverseOrder(t *testing.T) {
	sm := NewShutdownManager(testLogger(), nil, time.Second)

	var order []string
	sm.RegisterShutdownFunc("first", func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	sm.RegisterShutdownFunc("second", func(ctx context.Context) error {
		order = append(order, "second")
		return nil
	})

	require.NoError(t, sm.Shutdown(context.Background()))
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestShutdown_ContinuesAfterFailure(t *testing.T) {
	sm := NewShutdownManager(testLogger(), nil, time.Second)

	boom := errors.New("boom")
	ran := false
	sm.RegisterShutdownFunc("runs-last", func(ctx context.Context) error {
		ran = true
		return nil
	})
	sm.RegisterShutdownFunc("fails", func(ctx context.Context) error {
		return boom
	})

	err := sm.Shutdown(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fails")
	assert.True(t, ran)
}

func TestShutdown_StopsServer(t *testing.T) {
	server := &http.Server{Addr: "127.0.0.1:0"}
	sm := NewShutdownManager(testLogger(), server, time.Second)

	require.NoError(t, sm.Shutdown(context.Background()))
	assert.ErrorIs(t, server.ListenAndServe(), http.ErrServerClosed)
}

func TestWaitForShutdown_ContextCancelled(t *testing.T) {
	sm := NewShutdownManager(testLogger(), nil, time.Second)

	called := make(chan struct{}, 1)
	sm.RegisterShutdownFunc("flush", func(ctx context.Context) error {
		called <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, sm.WaitForShutdown(ctx))
	select {
	case <-called:
	default:
		t.Fatal("shutdown func was not called")
	}
}
