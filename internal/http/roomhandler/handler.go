package roomhandler

import (
	"context"
	"net/http"

	"chatrelay/internal/relay"

	"github.com/gin-gonic/gin"
)

// RoomQuerier is the read side of the relay hub.
type RoomQuerier interface {
	Stats(ctx context.Context) (relay.Stats, error)
	Rooms(ctx context.Context) ([]relay.RoomSummary, error)
	Room(ctx context.Context, roomID string) ([]relay.Identity, bool, error)
}

type Handler struct {
	svc RoomQuerier
}

func New(svc RoomQuerier) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/healthz", h.health)
	r.GET("/api/stats", h.stats)
	r.GET("/api/rooms", h.list)
	r.GET("/api/rooms/:id", h.info)
}

// @Summary		Liveness probe
// @Tags			Ops
// @Success		200	{object}	HealthResponse
// @Router			/healthz [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// @Summary		Relay counters
// @Description	Number of live rooms, accepted connections and present identities.
// @Tags			Ops
// @Success		200	{object}	relay.Stats
// @Failure		503	{object}	ErrorResponse
// @Router			/api/stats [get]
func (h *Handler) stats(c *gin.Context) {
	s, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, s)
}

// @Summary		List rooms
// @Description	Every room that currently has at least one connection.
// @Tags			Rooms
// @Success		200	{array}		relay.RoomSummary
// @Failure		503	{object}	ErrorResponse
// @Router			/api/rooms [get]
func (h *Handler) list(c *gin.Context) {
	out, err := h.svc.Rooms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary		Room online list
// @Tags			Rooms
// @Param			id	path		string	true	"Room ID"	default(lobby)
// @Success		200	{object}	RoomResponse
// @Failure		404	{object}	ErrorResponse
// @Failure		503	{object}	ErrorResponse
// @Router			/api/rooms/{id} [get]
func (h *Handler) info(c *gin.Context) {
	roomID := c.Param("id")
	users, found, err := h.svc.Room(c.Request.Context(), roomID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room " + roomID + " not found"})
		return
	}
	c.JSON(http.StatusOK, RoomResponse{ID: roomID, Users: users})
}
