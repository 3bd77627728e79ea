package roomhandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"chatrelay/internal/relay"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeQuerier struct {
	err error
}

func (f fakeQuerier) Stats(context.Context) (relay.Stats, error) {
	return relay.Stats{Rooms: 1, Connections: 3, Present: 2}, f.err
}

func (f fakeQuerier) Rooms(context.Context) ([]relay.RoomSummary, error) {
	return []relay.RoomSummary{{ID: "lobby", Members: 2}}, f.err
}

func (f fakeQuerier) Room(_ context.Context, id string) ([]relay.Identity, bool, error) {
	if id != "lobby" {
		return nil, false, f.err
	}
	return []relay.Identity{{ID: "1", Name: "Alice"}}, true, f.err
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		svc      fakeQuerier
		path     string
		wantCode int
		wantBody string
	}{
		{name: "health", path: "/healthz", wantCode: http.StatusOK, wantBody: `{"status":"ok"}`},
		{name: "stats", path: "/api/stats", wantCode: http.StatusOK, wantBody: `{"rooms":1,"connections":3,"present":2}`},
		{name: "rooms", path: "/api/rooms", wantCode: http.StatusOK, wantBody: `[{"id":"lobby","members":2}]`},
		{name: "room", path: "/api/rooms/lobby", wantCode: http.StatusOK, wantBody: `{"id":"lobby","users":[{"id":"1","name":"Alice"}]}`},
		{name: "missing room", path: "/api/rooms/void", wantCode: http.StatusNotFound, wantBody: `{"error":"room void not found"}`},
		{name: "hub stopped", svc: fakeQuerier{err: relay.ErrHubStopped}, path: "/api/stats", wantCode: http.StatusServiceUnavailable, wantBody: `{"error":"hub stopped"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			New(tt.svc).Register(engine)

			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
