package attr

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, CorrelationID(ctx))
	assert.True(t, ExtractCorrelationID(ctx).Equal(slog.Attr{}))

	ctx = WithCorrelationID(ctx, "abc")
	assert.Equal(t, "abc", CorrelationID(ctx))
	assert.Equal(t, "abc", ExtractCorrelationID(ctx).Value.String())
}

func TestExtractCorrelationID_DroppedWhenMissing(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.InfoContext(context.Background(), "hello", ExtractCorrelationID(context.Background()), Error(errors.New("boom")))

	assert.NotContains(t, buf.String(), CorrelationIDKey)
	assert.Contains(t, buf.String(), "error=boom")
}

func TestNewCorrelationID_Unique(t *testing.T) {
	assert.NotEqual(t, NewCorrelationID(), NewCorrelationID())
}
