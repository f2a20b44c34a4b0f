package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans journal notifications out to every connected dashboard view.
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	logger    *logrus.Logger
	lock      sync.Mutex
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, 16),
		logger:    logger,
	}
}

func (h *Hub) Run() {
	for message := range h.broadcast {
		h.lock.Lock()
		for client := range h.clients {
			err := client.WriteMessage(websocket.TextMessage, message)
			if err != nil {
				client.Close()
				delete(h.clients, client)
			}
		}
		h.lock.Unlock()
	}
}

// Broadcast queues a message for every connected client. A full queue drops
// the message rather than blocking the caller; views resync on reconnect.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
	}
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	h.lock.Lock()
	h.clients[conn] = true
	h.lock.Unlock()
}
