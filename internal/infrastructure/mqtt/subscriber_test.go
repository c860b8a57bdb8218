package mqtt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agrotrack-api/pkg/config"
	"github.com/jhoicas/agrotrack-api/pkg/logger"
)

type nopHandler struct{}

func (nopHandler) HandleMessage(context.Context, string, []byte) {}

func TestStart_URLInvalidaDevuelveError(t *testing.T) {
	// url.Parse rechaza la URL y paho queda sin servidores: el token falla al instante.
	s := NewSubscriber(config.MQTTConfig{BrokerURL: "tcp://[::1", Topic: "agrotrack/sensores", ClientID: "test"}, nopHandler{}, logger.Nop())

	begin := time.Now()
	err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tcp://[::1")
	assert.Less(t, time.Since(begin), connectGrace)
	assert.Error(t, s.ctx.Err(), "el contexto de los handlers se cancela")
}
