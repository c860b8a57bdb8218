package ports

// Tipos de evento que se empujan a los clientes websocket.
const (
	EventReading = "lectura"
	EventAlert   = "alerta"
)

// Broadcaster difunde eventos en vivo (lecturas, alertas) a los clientes conectados.
// No debe bloquear al llamador.
type Broadcaster interface {
	Broadcast(kind string, data any)
}
