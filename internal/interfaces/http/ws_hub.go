package http

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/ports"
	"github.com/jhoicas/agrotrack-api/pkg/jwt"
	"github.com/jhoicas/agrotrack-api/pkg/logger"
)

// wsEvent mensaje empujado a los clientes.
type wsEvent struct {
	Type string `json:"tipo"`
	Data any    `json:"data"`
}

type wsClient struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// Hub difunde lecturas y alertas a los clientes websocket.
// Una sola goroutine (Run) es dueña del conjunto de clientes.
type Hub struct {
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan []byte
	count      chan chan int
	done       chan struct{}
	stopOnce   sync.Once
	log        *logger.Logger
}

var _ ports.Broadcaster = (*Hub)(nil)

// NewHub crea el hub; Run debe lanzarse en su propia goroutine.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan []byte, 256),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		log:        log.Component("ws"),
	}
}

// Run atiende altas, bajas y difusiones hasta Stop.
func (h *Hub) Run() {
	clients := make(map[*wsClient]struct{})
	for {
		select {
		case <-h.done:
			for cl := range clients {
				close(cl.send)
			}
			return
		case cl := <-h.register:
			clients[cl] = struct{}{}
			h.log.Debug().Str("user_id", cl.userID).Int("clientes", len(clients)).Msg("cliente conectado")
		case cl := <-h.unregister:
			if _, ok := clients[cl]; ok {
				delete(clients, cl)
				close(cl.send)
			}
		case msg := <-h.broadcast:
			for cl := range clients {
				select {
				case cl.send <- msg:
				default:
					// cliente lento: se descarta
					delete(clients, cl)
					close(cl.send)
				}
			}
		case reply := <-h.count:
			reply <- len(clients)
		}
	}
}

// Stop cierra todas las conexiones y termina Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Clients cantidad de clientes conectados (0 si el hub está detenido).
func (h *Hub) Clients() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Broadcast encola el evento sin bloquear; si la cola está llena se descarta.
func (h *Hub) Broadcast(kind string, data any) {
	msg, err := json.Marshal(wsEvent{Type: kind, Data: data})
	if err != nil {
		h.log.Error().Err(err).Str("tipo", kind).Msg("evento no serializable")
		return
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.log.Warn().Str("tipo", kind).Msg("cola de difusión llena, evento descartado")
	}
}

// Upgrade exige una petición websocket con token válido en ?token=.
func (h *Hub) Upgrade(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.Status(fiber.StatusUpgradeRequired).JSON(dto.ErrorResponse{Code: "UPGRADE_REQUIRED", Message: "se requiere websocket"})
		}
		token := c.Query("token")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "parámetro token requerido"})
		}
		claims, err := jwt.Parse(jwtSecret, token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		setClaims(c, claims)
		return c.Next()
	}
}

// Handler atiende una conexión: registra el cliente, escribe lo que llega por send
// y lee hasta que el cliente cierra.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(LocalUserID).(string)
		cl := &wsClient{conn: conn, userID: userID, send: make(chan []byte, 32)}
		select {
		case h.register <- cl:
		case <-h.done:
			return
		}

		written := make(chan struct{})
		go func() {
			defer close(written)
			h.writePump(cl)
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		select {
		case h.unregister <- cl:
		case <-h.done:
		}
		// la conexión se recicla al volver; el escritor debe haber terminado
		<-written
	})
}

func (h *Hub) writePump(cl *wsClient) {
	defer cl.conn.Close()
	for msg := range cl.send {
		if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Debug().Err(err).Str("user_id", cl.userID).Msg("escritura websocket fallida")
			// cerrar corta el ciclo de lectura; se drena hasta que Run cierre send
			_ = cl.conn.Close()
			for range cl.send {
			}
			return
		}
	}
	_ = cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
}
