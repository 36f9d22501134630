package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mapleleafu/santaflap/santaflap-backend/anticheat"
)

const (
	writeWait         = 10 * time.Second
	leaderboardWait   = 5 * time.Second
	feedSendQueueSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// LeaderboardFeed streams the top players: one snapshot on connect and a
// fresh one whenever a best score is raised. Incoming messages are ignored.
//
// The connection is registered before the snapshot is written, so an update
// that lands in between is queued behind the snapshot rather than lost.
func (h *Handler) LeaderboardFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	connection := &Connection{ws: conn, send: make(chan []byte, feedSendQueueSize)}
	if !h.hub.subscribe(connection) {
		conn.Close()
		return
	}

	// writePump is not running yet, so this is the only writer.
	if message, err := h.leaderboardMessage(r.Context()); err == nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.hub.unsubscribe(connection)
			conn.Close()
			return
		}
	} else {
		log.Printf("Error loading leaderboard snapshot: %v", err)
	}

	go connection.writePump()
	connection.readPump(h.hub)
}

func (c *Connection) readPump(hub *Hub) {
	defer func() {
		hub.unsubscribe(c)
		c.ws.Close()
	}()

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Error reading from leaderboard feed: %v", err)
			}
			return
		}
	}
}

func (c *Connection) writePump() {
	defer func() {
		c.ws.Close()
	}()

	for message := range c.send {
		c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("error writing message: %v", err)
			return
		}
	}
	c.ws.WriteMessage(websocket.CloseMessage, []byte{})
}

func (h *Handler) leaderboardMessage(ctx context.Context) ([]byte, error) {
	entries, err := h.Service.TopPlayers(ctx, anticheat.DefaultLeaderboardSize)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]interface{}{
		"type": "leaderboard",
		"data": entries,
	})
}

func (h *Handler) pushLeaderboard() {
	ctx, cancel := context.WithTimeout(context.Background(), leaderboardWait)
	defer cancel()

	message, err := h.leaderboardMessage(ctx)
	if err != nil {
		log.Printf("Error loading leaderboard for broadcast: %v", err)
		return
	}
	h.hub.publish(message)
}
