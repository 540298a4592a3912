package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animehub/pkg/models"
)

// dialSubscriber upgrades an in-process connection and subscribes it to the
// hub, returning the client side. Reading the initial counts frame is how
// callers know registration finished.
func dialSubscriber(t *testing.T, hub *Hub, animeID int64, counts models.ReactionCounts) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.ServeClient(conn, animeID, counts)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readCounts(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestServeClientSendsInitialCounts(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	conn := dialSubscriber(t, hub, 42, models.ReactionCounts{Likes: 3, Dislikes: 1})

	msg := readCounts(t, conn)
	assert.Equal(t, "counts", msg.Type)
	assert.Equal(t, int64(42), msg.AnimeID)
	assert.Equal(t, int64(3), msg.Likes)
	assert.Equal(t, int64(1), msg.Dislikes)
	assert.Eventually(t, func() bool { return hub.ClientCount(42) == 1 },
		time.Second, 10*time.Millisecond)
}

func TestNotifyReactionCountsReachesSubscriber(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	conn := dialSubscriber(t, hub, 7, models.ReactionCounts{})
	readCounts(t, conn)

	hub.NotifyReactionCounts(7, models.ReactionCounts{Likes: 10, Dislikes: 2})

	msg := readCounts(t, conn)
	assert.Equal(t, int64(10), msg.Likes)
	assert.Equal(t, int64(2), msg.Dislikes)
}

// Stop must finish while subscribers are still connected: the read pumps
// hold wg slots and may only unblock via the room's stop channel.
func TestStopCompletesWithLiveSubscribers(t *testing.T) {
	hub := NewHub()

	first := dialSubscriber(t, hub, 9, models.ReactionCounts{})
	second := dialSubscriber(t, hub, 9, models.ReactionCounts{})
	readCounts(t, first)
	readCounts(t, second)
	require.Eventually(t, func() bool { return hub.ClientCount(9) == 2 },
		time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		hub.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("hub did not stop while subscribers were connected")
	}
}
