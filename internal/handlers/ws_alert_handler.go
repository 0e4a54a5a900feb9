package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/Dias221467/food-expiry-tracker/internal/models"
	jwtutil "github.com/Dias221467/food-expiry-tracker/pkg/jwt"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsSendBuffer = 16
)

// WSMessage is the envelope pushed to live feed clients.
type WSMessage struct {
	Type  string        `json:"type"` // "alert"
	Alert *models.Alert `json:"alert,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// AlertHub keeps the open /ws/alerts connections per user and pushes newly created
// alerts to them.
type AlertHub struct {
	JWTSecret string

	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[string]map[*wsClient]struct{}
}

func NewAlertHub(jwtSecret string) *AlertHub {
	return &AlertHub{
		JWTSecret: jwtSecret,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]map[*wsClient]struct{}),
	}
}

// Publish queues alert for every connection of userID. Slow clients drop messages rather
// than block the alert scan.
func (h *AlertHub) Publish(userID primitive.ObjectID, alert models.Alert) {
	payload, err := json.Marshal(WSMessage{Type: "alert", Alert: &alert})
	if err != nil {
		log.WithError(err).Warn("Failed to encode live alert")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[userID.Hex()] {
		select {
		case c.send <- payload:
		default:
			log.WithField("user_id", userID.Hex()).Warn("Live alert dropped for slow client")
		}
	}
}

// Connections returns the number of open connections of userID.
func (h *AlertHub) Connections(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

// GET /ws/alerts?token=<jwt>
func (h *AlertHub) AlertWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusUnauthorized, "Missing token")
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		log.WithError(err).Warn("WebSocket auth failed")
		respondError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	userID := claims.UserID

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, wsSendBuffer)}
	h.register(userID, c)
	log.WithField("user_id", userID).Info("WebSocket connected")

	go h.writePump(c)
	h.readPump(c)

	h.unregister(userID, c)
	log.WithField("user_id", userID).Info("WebSocket disconnected")
}

func (h *AlertHub) register(userID string, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*wsClient]struct{})
	}
	h.clients[userID][c] = struct{}{}
}

func (h *AlertHub) unregister(userID string, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID][c]; !ok {
		return
	}
	delete(h.clients[userID], c)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
	close(c.send)
}

// readPump only exists to process control frames and notice the client going away.
func (h *AlertHub) readPump(c *wsClient) {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *AlertHub) writePump(c *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
