package ws

import (
	"net/http"
	"slices"
	"time"

	"chatrelay/internal/relay"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Options tune the transport. Zero values fall back to sane defaults.
type Options struct {
	SendBuffer     int
	MaxFrameSize   int64
	WriteWait      time.Duration
	AllowedOrigins []string
}

type WsServer struct {
	hub      *relay.Hub
	upgrader websocket.Upgrader
	opts     Options
}

func NewWsServer(hub *relay.Hub, opts Options) *WsServer {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 256
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = 10 * time.Second
	}
	srv := &WsServer{hub: hub, opts: opts}
	srv.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     srv.checkOrigin,
	}
	return srv
}

// ---------------------------------------------------------------------------
//  Public: Gin entry‑point
// ---------------------------------------------------------------------------

// Handle upgrades the request and hands the socket to the hub. Identity
// arrives later with the first join frame.
func (s *WsServer) Handle(ginCtx *gin.Context) {
	rawConn, err := s.upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.upgrade", zap.Error(err))
		return
	}

	peer := newClientConn(uuid.NewString(), rawConn, s.opts.SendBuffer, s.opts.WriteWait)
	conn := s.hub.Register(peer)
	zap.L().Debug("ws.accepted",
		zap.String("conn", peer.id),
		zap.String("remote", ginCtx.ClientIP()),
	)

	go peer.writePump()
	go peer.readPump(s.hub, conn, s.opts.MaxFrameSize)
}

func (s *WsServer) checkOrigin(r *http.Request) bool {
	if len(s.opts.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(s.opts.AllowedOrigins, r.Header.Get("Origin"))
}
