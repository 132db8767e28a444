package websocket

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaybpaid/DFS-APP-sub002/internal/types"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	hub := NewHub(log)
	go hub.Run()

	router := gin.New()
	router.GET("/ws/progress/:slate_id", hub.HandleWebSocket)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return hub, server
}

func waitForConnections(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.GetConnectionCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d connections, have %d", want, hub.GetConnectionCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastProgressToSlateSubscribers(t *testing.T) {
	hub, server := startHub(t)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/progress/slate-1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	waitForConnections(t, hub, 1)

	update := types.ProgressUpdate{
		Type:      "optimization",
		SlateID:   "slate-1",
		Progress:  0.5,
		Message:   "Solved 5/10 lineups",
		Timestamp: time.Now(),
	}
	hub.BroadcastProgress(update)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var received types.ProgressUpdate
	require.NoError(t, json.Unmarshal(data, &received))
	assert.Equal(t, "slate-1", received.SlateID)
	assert.InDelta(t, 0.5, received.Progress, 0.001)
}

func TestHub_OtherSlateDoesNotReceive(t *testing.T) {
	hub, server := startHub(t)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/progress/slate-2"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	waitForConnections(t, hub, 1)

	hub.BroadcastProgress(types.ProgressUpdate{Type: "optimization", SlateID: "slate-1", Progress: 1})

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "subscriber of another slate should time out")
}

func TestHub_SaturatedClientEvictedOnce(t *testing.T) {
	hub, _ := startHub(t)

	// An unbuffered channel with no reader saturates on the first send.
	client := &Client{SlateID: "slate-1", Send: make(chan []byte), Hub: hub}
	hub.register <- client
	waitForConnections(t, hub, 1)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.BroadcastToSlate("slate-1", types.ProgressUpdate{SlateID: "slate-1", Progress: 1})
		}()
	}
	wg.Wait()

	waitForConnections(t, hub, 0)

	_, open := <-client.Send
	assert.False(t, open, "evicted client's channel must be closed exactly once")

	// Later broadcasts must not see the evicted client.
	hub.BroadcastToSlate("slate-1", types.ProgressUpdate{SlateID: "slate-1", Progress: 1})
}

func TestHub_BroadcastWithoutSubscribersIsNoop(t *testing.T) {
	hub, _ := startHub(t)
	// Must not panic or block.
	hub.BroadcastProgress(types.ProgressUpdate{SlateID: "nobody", Progress: 1})
	assert.Equal(t, 0, hub.GetConnectionCount())
}
