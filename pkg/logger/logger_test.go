package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLevelOf(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":  zerolog.DebugLevel,
		" WARN ": zerolog.WarnLevel,
		"error":  zerolog.ErrorLevel,
		"":       zerolog.InfoLevel,
		"ruido":  zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, levelOf(in), in)
	}
}

func TestNew_AplicaNivel(t *testing.T) {
	l := New(Config{Env: "production", Level: "warn", Service: "agrotrack"})
	assert.Equal(t, zerolog.WarnLevel, l.Level())
	assert.Equal(t, zerolog.WarnLevel, l.Component("mqtt").Level())
}
