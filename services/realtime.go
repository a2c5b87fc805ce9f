package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10
)

// BoardEvent is pushed to dashboards watching a board. Clients refetch the
// board on receipt; the event itself carries no board data.
type BoardEvent struct {
	Type    string `json:"type"`
	BoardID string `json:"boardId"`
	UserID  uint   `json:"userId,omitempty"`
}

// BoardClient is one dashboard connection subscribed to a single board.
type BoardClient struct {
	hub     *BoardHub
	conn    *websocket.Conn
	send    chan []byte
	boardID string
}

// BoardHub fans board-change events out to every connection watching that
// board. A mutation handler calls NotifyBoardChanged after a successful save.
type BoardHub struct {
	mu      sync.RWMutex
	clients map[string]map[*BoardClient]bool // boardID -> connections
}

func NewBoardHub() *BoardHub {
	return &BoardHub{clients: make(map[string]map[*BoardClient]bool)}
}

// Subscribe registers a connection for a board and starts its pumps.
func (h *BoardHub) Subscribe(conn *websocket.Conn, boardID string) *BoardClient {
	client := &BoardClient{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 16),
		boardID: boardID,
	}

	h.mu.Lock()
	if h.clients[boardID] == nil {
		h.clients[boardID] = make(map[*BoardClient]bool)
	}
	h.clients[boardID][client] = true
	h.mu.Unlock()

	go client.writePump()
	go client.readPump()
	return client
}

func (h *BoardHub) unsubscribe(client *BoardClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[client.boardID]; ok {
		if conns[client] {
			delete(conns, client)
			close(client.send)
		}
		if len(conns) == 0 {
			delete(h.clients, client.boardID)
		}
	}
}

// NotifyBoardChanged broadcasts a board-updated event to every watcher.
// actorID identifies who made the change so clients can skip their own echo.
func (h *BoardHub) NotifyBoardChanged(boardID string, actorID uint) {
	payload, err := json.Marshal(BoardEvent{Type: "board-updated", BoardID: boardID, UserID: actorID})
	if err != nil {
		log.Printf("Error marshalling board event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[boardID] {
		select {
		case client.send <- payload:
		default:
			// Send buffer full, assume the connection is gone.
			go h.unsubscribe(client)
		}
	}
}

// WatcherCount reports how many connections are subscribed to a board.
func (h *BoardHub) WatcherCount(boardID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[boardID])
}

// readPump drains the connection so pings/pongs and close frames are
// processed; incoming messages are ignored, the feed is one-way.
func (c *BoardClient) readPump() {
	defer func() {
		c.hub.unsubscribe(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

func (c *BoardClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
