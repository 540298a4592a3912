// Package websocket - Live Reaction Channel
// Pushes per-anime like/dislike tallies to subscribed browsers so reaction
// buttons update everywhere without polling. The channel is one-way: clients
// subscribe by connecting, the server pushes fresh counts after each
// reaction mutation.
package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"animehub/pkg/models"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	maxMessageSize  = 512
	maxRoomSize     = 1000
	cleanupInterval = 5 * time.Minute
)

// Hub manages per-anime subscriber rooms
type Hub struct {
	roomsMu sync.RWMutex
	rooms   map[int64]*Room // anime_id -> Room
	stop    chan struct{}
	wg      sync.WaitGroup
}

// Room holds the subscribers of one anime
type Room struct {
	animeID    int64
	clientsMu  sync.RWMutex
	clients    map[*Client]bool
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	stopped    bool
	stop       chan struct{}
}

// Client represents one subscribed connection
type Client struct {
	room    *Room
	conn    *websocket.Conn
	send    chan *Message
	animeID int64
}

// Message is the wire format pushed to subscribers
type Message struct {
	Type      string    `json:"type"` // "counts", "error"
	AnimeID   int64     `json:"anime_id"`
	Likes     int64     `json:"likes"`
	Dislikes  int64     `json:"dislikes"`
	Timestamp time.Time `json:"timestamp"`
}

// NewHub creates a new reaction hub
func NewHub() *Hub {
	hub := &Hub{
		rooms: make(map[int64]*Room),
		stop:  make(chan struct{}),
	}

	hub.wg.Add(1)
	go hub.cleanupRooms()

	return hub
}

// NotifyReactionCounts pushes fresh tallies to every subscriber of an anime.
// No room means no subscribers, which is not an error.
func (h *Hub) NotifyReactionCounts(animeID int64, counts models.ReactionCounts) {
	h.roomsMu.RLock()
	room, exists := h.rooms[animeID]
	h.roomsMu.RUnlock()
	if !exists {
		return
	}

	msg := &Message{
		Type:      "counts",
		AnimeID:   animeID,
		Likes:     counts.Likes,
		Dislikes:  counts.Dislikes,
		Timestamp: time.Now(),
	}

	select {
	case room.broadcast <- msg:
	default:
		logrus.Warnf("Reaction broadcast buffer full for anime %d, dropping update", animeID)
	}
}

// cleanupRooms periodically removes empty rooms
func (h *Hub) cleanupRooms() {
	defer h.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.roomsMu.Lock()
			for animeID, room := range h.rooms {
				room.clientsMu.RLock()
				clientCount := len(room.clients)
				room.clientsMu.RUnlock()

				if clientCount == 0 {
					close(room.stop)
					delete(h.rooms, animeID)
					logrus.Debugf("🧹 Cleaned up empty reaction room: %d", animeID)
				}
			}
			h.roomsMu.Unlock()

		case <-h.stop:
			return
		}
	}
}

// getOrCreateRoom returns the existing room for an anime or creates one
func (h *Hub) getOrCreateRoom(animeID int64) *Room {
	h.roomsMu.Lock()
	defer h.roomsMu.Unlock()

	if room, exists := h.rooms[animeID]; exists {
		return room
	}

	room := &Room{
		animeID:    animeID,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
	}

	h.rooms[animeID] = room
	go room.run()

	logrus.Debugf("🆕 Created reaction room: %d", animeID)
	return room
}

func (r *Room) run() {
	for {
		select {
		case client := <-r.register:
			r.handleRegister(client)
		case client := <-r.unregister:
			r.handleUnregister(client)
		case message := <-r.broadcast:
			r.handleBroadcast(message)
		case <-r.stop:
			r.handleStop()
			return
		}
	}
}

func (r *Room) handleRegister(client *Client) {
	if r.stopped {
		return
	}

	r.clientsMu.Lock()
	if len(r.clients) >= maxRoomSize {
		r.clientsMu.Unlock()
		logrus.Warnf("Reaction room %d full, rejecting client", r.animeID)
		client.conn.Close()
		return
	}
	r.clients[client] = true
	count := len(r.clients)
	r.clientsMu.Unlock()

	logrus.Debugf("✅ Subscriber joined reaction room %d (%d connected)", r.animeID, count)
}

func (r *Room) handleUnregister(client *Client) {
	if r.stopped {
		return
	}

	r.clientsMu.Lock()
	if _, ok := r.clients[client]; ok {
		delete(r.clients, client)
		close(client.send)
	}
	r.clientsMu.Unlock()

	logrus.Debugf("👋 Subscriber left reaction room %d", r.animeID)
}

func (r *Room) handleBroadcast(message *Message) {
	if r.stopped {
		return
	}

	r.clientsMu.RLock()
	defer r.clientsMu.RUnlock()

	for client := range r.clients {
		select {
		case client.send <- message:
		default:
			logrus.Warnf("Subscriber send buffer full in room %d, disconnecting", r.animeID)
			go func(c *Client) {
				select {
				case r.unregister <- c:
				case <-r.stop:
				}
			}(client)
		}
	}
}

func (r *Room) handleStop() {
	r.stopped = true

	r.clientsMu.Lock()
	for client := range r.clients {
		close(client.send)
		client.conn.Close()
	}
	r.clients = nil
	r.clientsMu.Unlock()

	logrus.Debugf("🛑 Reaction room stopped: %d", r.animeID)
}

// readPump drains the connection so pongs and close frames are processed.
// Subscribers have nothing to say; any payload is discarded.
func (c *Client) readPump() {
	defer func() {
		// After the room loop exits nobody drains unregister; bail out on
		// stop so shutdown never waits on this goroutine.
		select {
		case c.room.unregister <- c:
		case <-c.room.stop:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.Warnf("WebSocket read error: %v", err)
			}
			break
		}
	}
}

// writePump pushes queued messages and pings to the connection
func (c *Client) writePump() {
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

			data, err := json.Marshal(message)
			if err != nil {
				logrus.Errorf("Failed to marshal reaction message: %v", err)
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.room.stop:
			return
		}
	}
}

// ServeClient subscribes a connection to an anime's reaction room and sends
// the current tallies as the first frame
func (h *Hub) ServeClient(conn *websocket.Conn, animeID int64, counts models.ReactionCounts) {
	room := h.getOrCreateRoom(animeID)

	client := &Client{
		room:    room,
		conn:    conn,
		send:    make(chan *Message, 64),
		animeID: animeID,
	}

	select {
	case room.register <- client:
	case <-room.stop:
		conn.Close()
		return
	}

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()

	client.send <- &Message{
		Type:      "counts",
		AnimeID:   animeID,
		Likes:     counts.Likes,
		Dislikes:  counts.Dislikes,
		Timestamp: time.Now(),
	}
}

// ClientCount returns the number of subscribers for an anime
func (h *Hub) ClientCount(animeID int64) int {
	h.roomsMu.RLock()
	defer h.roomsMu.RUnlock()

	if room, exists := h.rooms[animeID]; exists {
		room.clientsMu.RLock()
		defer room.clientsMu.RUnlock()
		return len(room.clients)
	}
	return 0
}

// Stop gracefully shuts down the hub
func (h *Hub) Stop() {
	logrus.Info("🛑 Stopping reaction hub...")

	close(h.stop)

	h.roomsMu.Lock()
	for _, room := range h.rooms {
		close(room.stop)
	}
	h.roomsMu.Unlock()

	h.wg.Wait()
	logrus.Info("✅ Reaction hub stopped")
}
