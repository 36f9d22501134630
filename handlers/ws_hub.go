package handlers

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Connection is one leaderboard feed subscriber.
type Connection struct {
	ws   *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active connections and broadcasts messages to the connections.
type Hub struct {
	// Registered connections.
	connections map[*Connection]bool

	// Outbound leaderboard snapshots.
	broadcast chan []byte

	register chan *Connection

	unregister chan *Connection

	done     chan struct{}
	stopOnce sync.Once
}

func newHub() *Hub {
	return &Hub{
		broadcast:   make(chan []byte),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		connections: make(map[*Connection]bool),
		done:        make(chan struct{}),
	}
}

func (h *Hub) run() {
	for {
		select {
		case connection := <-h.register:
			h.connections[connection] = true
		case connection := <-h.unregister:
			if _, ok := h.connections[connection]; ok {
				delete(h.connections, connection)
				close(connection.send)
			}
		case message := <-h.broadcast:
			for connection := range h.connections {
				select {
				case connection.send <- message:
				default:
					// Slow reader; drop it rather than stall the feed.
					close(connection.send)
					delete(h.connections, connection)
				}
			}
		case <-h.done:
			for connection := range h.connections {
				close(connection.send)
				delete(h.connections, connection)
			}
			return
		}
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// The send helpers give up once the hub has stopped so handlers never block on it.

func (h *Hub) subscribe(c *Connection) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unsubscribe(c *Connection) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) publish(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}
