package websocket

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"animehub/internal/core"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	CheckOrigin:       checkOrigin,
	EnableCompression: true,
}

// Handler upgrades HTTP requests into reaction-count subscriptions.
// Subscription is anonymous: counts are public data, so no token is needed.
type Handler struct {
	hub      *Hub
	engSvc   core.EngagementService
	animeSvc core.AnimeService
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, engSvc core.EngagementService, animeSvc core.AnimeService) *Handler {
	return &Handler{hub: hub, engSvc: engSvc, animeSvc: animeSvc}
}

// HandleReactions upgrades the connection and subscribes it to an anime's
// live reaction tallies. GET /ws/animes/:id
func (h *Handler) HandleReactions(c *gin.Context) {
	animeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || animeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid anime id"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.animeSvc.GetByID(ctx, animeID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "anime not found"})
		return
	}

	// First frame carries the current tallies so subscribers never render
	// stale zeros.
	counts, err := h.engSvc.CountReactions(ctx, animeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reaction counts"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.Errorf("WebSocket upgrade failed: %v", err)
		// NOTE: gorilla/websocket writes its own HTTP response (often 403) when CheckOrigin fails.
		// Writing JSON here can cause confusing double-write behavior, so just return.
		return
	}

	h.hub.ServeClient(conn, animeID, counts)

	logrus.Debugf("✅ Reaction subscriber connected: anime_id=%d clients=%d",
		animeID, h.hub.ClientCount(animeID))
}

// RoomStatus reports subscriber counts for a room. GET /ws/animes/:id/status
func (h *Handler) RoomStatus(c *gin.Context) {
	animeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || animeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid anime id"})
		return
	}

	clientCount := h.hub.ClientCount(animeID)
	c.JSON(http.StatusOK, gin.H{
		"anime_id":     animeID,
		"client_count": clientCount,
		"active":       clientCount > 0,
		"server_time":  time.Now().UTC(),
	})
}

// checkOrigin validates request origin against allowed origins
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	// Non-browser clients may omit Origin; treat as allowed.
	if origin == "" {
		return true
	}

	if u, err := url.Parse(origin); err == nil {
		host := strings.ToLower(u.Hostname())
		if host == "localhost" || host == "127.0.0.1" || host == "0.0.0.0" {
			return true
		}
	}

	// In development, allow all origins
	if gin.Mode() == gin.DebugMode {
		return true
	}

	allowed := []string{"https://animehub.example.com", "https://app.animehub.example.com"}
	for _, allowedOrigin := range allowed {
		if origin == allowedOrigin {
			return true
		}
	}
	return false
}
