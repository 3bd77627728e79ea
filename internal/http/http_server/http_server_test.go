package http_server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chatrelay/internal/relay"
	"chatrelay/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHttpServer_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := relay.NewHub(relay.NewMemoryGraph(), relay.Options{LivenessInterval: time.Hour})
	go hub.Run(ctx)

	srv := NewHttpServer(ctx, 0, ws.NewWsServer(hub, ws.Options{}), hub)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "join", "roomId": "lobby", "user": map[string]string{"id": "1", "name": "Alice"},
	}))

	require.Eventually(t, func() bool {
		resp, err := http.Get(ts.URL + "/api/rooms")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && string(body) == `[{"id":"lobby","members":1}]`
	}, 2*time.Second, 20*time.Millisecond)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
