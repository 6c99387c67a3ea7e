package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithCtx_FallsBackToBase(t *testing.T) {
	assert.Same(t, L, WithCtx(context.Background()))
}

func TestWithCtx_ReturnsInjected(t *testing.T) {
	reqLog := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)).With("request_id", "abc")
	ctx := InjectLogger(context.Background(), reqLog)

	assert.Same(t, reqLog, WithCtx(ctx))
}

func TestNewHandler_ProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newHandler(&buf, true))

	log.Info("hello", "k", 1)

	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestNewHandler_DevSuppressesNothingAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newHandler(&buf, false))

	log.Debug("verbose")

	assert.Contains(t, buf.String(), "verbose")
}

func TestMultiHandler_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	)

	slog.New(h).With("request_id", "r1").Info("placed")

	require.Contains(t, a.String(), "request_id=r1")
	require.Contains(t, b.String(), `"request_id":"r1"`)
}
