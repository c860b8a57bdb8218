// Package mqtt suscribe la API al tópico donde publican los dispositivos de campo.
package mqtt

import (
	"context"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/jhoicas/agrotrack-api/pkg/config"
	"github.com/jhoicas/agrotrack-api/pkg/logger"
)

// MessageHandler procesa un mensaje recibido. No debe bloquear por mucho tiempo:
// paho entrega los mensajes en orden desde una única goroutine.
type MessageHandler interface {
	HandleMessage(ctx context.Context, topic string, payload []byte)
}

// Subscriber cliente MQTT con reconexión automática; se resuscribe en cada conexión.
type Subscriber struct {
	client  paho.Client
	broker  string
	topic   string
	handler MessageHandler
	log     *logger.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewSubscriber prepara el cliente sin conectar.
func NewSubscriber(cfg config.MQTTConfig, handler MessageHandler, log *logger.Logger) *Subscriber {
	s := &Subscriber{broker: cfg.BrokerURL, topic: cfg.Topic, handler: handler, log: log}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(fmt.Sprintf("%s-%d", cfg.ClientID, time.Now().UnixNano()%100000)).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(time.Minute).
		SetKeepAlive(30 * time.Second).
		SetOnConnectHandler(s.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warn().Err(err).Msg("conexión MQTT perdida")
		}).
		SetReconnectingHandler(func(_ paho.Client, _ *paho.ClientOptions) {
			log.Info().Msg("reconectando a MQTT")
		})
	s.client = paho.NewClient(opts)
	return s
}

// connectGrace espera inicial antes de pasar la conexión a segundo plano.
const connectGrace = 2 * time.Second

// Start conecta; si el token termina con error dentro de connectGrace (URL sin
// servidores válidos, por ejemplo) lo devuelve. Si no, los reintentos siguen en segundo plano.
func (s *Subscriber) Start() error {
	token := s.client.Connect()
	if token.WaitTimeout(connectGrace) {
		if err := token.Error(); err != nil {
			s.cancel()
			return fmt.Errorf("mqtt: conectar a %s: %w", s.broker, err)
		}
		return nil
	}
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			s.log.Error().Err(err).Msg("no se pudo conectar a MQTT")
		}
	}()
	return nil
}

func (s *Subscriber) onConnect(c paho.Client) {
	s.log.Info().Str("topic", s.topic).Msg("conectado a MQTT")
	token := c.Subscribe(s.topic, 0, func(_ paho.Client, msg paho.Message) {
		s.handler.HandleMessage(s.ctx, msg.Topic(), msg.Payload())
	})
	go func() {
		if !token.WaitTimeout(10 * time.Second) {
			s.log.Warn().Str("topic", s.topic).Msg("suscripción MQTT sin confirmar")
			return
		}
		if err := token.Error(); err != nil {
			s.log.Error().Err(err).Str("topic", s.topic).Msg("suscripción MQTT rechazada")
		}
	}()
}

// Stop cancela el contexto de los handlers y desconecta dando 250 ms para vaciar la cola.
func (s *Subscriber) Stop() {
	s.cancel()
	if s.client.IsConnected() {
		s.client.Unsubscribe(s.topic).WaitTimeout(2 * time.Second)
	}
	s.client.Disconnect(250)
}
