package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrettyHandlerRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(New(&buf, "pretty", "info"))

	log.Info("sign-in", "email", "a@shop.test", "password", "hunter22", "refresh_token", "abc.def.ghi")

	out := buf.String()
	assert.Contains(t, out, "a@shop.test")
	assert.NotContains(t, out, "hunter22")
	assert.NotContains(t, out, "abc.def.ghi")
	assert.Contains(t, out, redacted)
}

func TestJSONHandlerRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(New(&buf, "json", "debug"))

	log.Debug("token issued", "token", "abc.def.ghi", "uid", "u1")

	assert.Contains(t, buf.String(), `"uid":"u1"`)
	assert.NotContains(t, buf.String(), "abc.def.ghi")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(New(&buf, "", "warn"))

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}
