package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zerolog.Disabled, parseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("nonsense"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
}

func TestInit_JSONOutputWithComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	defer Init(Config{})

	l := Component("booking")
	l.Info().Str("booking_id", "b-1").Msg("accepted")

	out := buf.String()
	assert.Contains(t, out, `"component":"booking"`)
	assert.Contains(t, out, `"booking_id":"b-1"`)
	assert.Contains(t, out, `"message":"accepted"`)
}

func TestCtx_AttachesRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	ctx := ContextWithRequestID(context.Background(), "req-42")

	Ctx(ctx, l).Info().Msg("hello")
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)

	buf.Reset()
	Ctx(context.Background(), l).Info().Msg("hello")
	assert.NotContains(t, buf.String(), "request_id")
}
