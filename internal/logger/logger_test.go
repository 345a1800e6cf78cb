package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	ctx := l.WithContext(context.Background())

	InfoLog(ctx, "split %s", "done")
	ErrorLog(ctx, "split failed", assert.AnError)

	out := buf.String()
	assert.Contains(t, out, `"message":"split done"`)
	assert.Contains(t, out, `"error":"`+assert.AnError.Error()+`"`)
}

func TestGlobal_CarriedByContext(t *testing.T) {
	assert.Same(t, Global(), getLogger(context.Background()))

	ctx := Global().WithContext(context.Background())
	assert.Equal(t, Global().GetLevel(), zerolog.Ctx(ctx).GetLevel())
}
