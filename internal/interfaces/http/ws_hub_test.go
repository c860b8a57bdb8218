package http

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agrotrack-api/internal/application/ports"
)

func TestHub_DifundeAClientesRegistrados(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Stop()

	a := &wsClient{userID: "a", send: make(chan []byte, 4)}
	b := &wsClient{userID: "b", send: make(chan []byte, 4)}
	h.register <- a
	h.register <- b
	require.Equal(t, 2, h.Clients())

	h.Broadcast(ports.EventReading, map[string]float64{"valor": 24.5})

	for _, cl := range []*wsClient{a, b} {
		select {
		case raw := <-cl.send:
			var ev struct {
				Type string             `json:"tipo"`
				Data map[string]float64 `json:"data"`
			}
			require.NoError(t, json.Unmarshal(raw, &ev))
			assert.Equal(t, ports.EventReading, ev.Type)
			assert.Equal(t, 24.5, ev.Data["valor"])
		case <-time.After(time.Second):
			t.Fatalf("el cliente %s no recibió el evento", cl.userID)
		}
	}
}

func TestHub_DescartaClienteLento(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Stop()

	slow := &wsClient{userID: "lento", send: make(chan []byte)}
	h.register <- slow
	require.Equal(t, 1, h.Clients())

	h.Broadcast(ports.EventAlert, "x")

	require.Eventually(t, func() bool { return h.Clients() == 0 }, time.Second, 10*time.Millisecond)
	_, open := <-slow.send
	assert.False(t, open, "send debe cerrarse al descartar")
}

func TestHub_StopCierraClientes(t *testing.T) {
	h := NewHub(nil)
	go h.Run()

	cl := &wsClient{userID: "a", send: make(chan []byte, 1)}
	h.register <- cl
	h.Stop()
	h.Stop()

	select {
	case _, open := <-cl.send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("send no se cerró tras Stop")
	}
	assert.Equal(t, 0, h.Clients())
	h.Broadcast(ports.EventAlert, "sin efecto")
}
