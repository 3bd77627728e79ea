package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidFrame = errors.New("invalid frame")
	ErrUnknownEvent = errors.New("unknown event")
	ErrNotJoined    = errors.New("connection has not joined a room")
	ErrNoIdentity   = errors.New("connection has no identity")
	ErrSelfFriend   = errors.New("cannot befriend yourself")
)

// internal (untyped) handler signature.
type rawHandler func(c *Conn, frame []byte) error

type normalizer interface{ normalize() }

// Router keeps a map[event]handler. Every frame is decoded into the typed
// request of its event and validated before the handler runs.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]rawHandler
	validate *validator.Validate
}

func NewRouter() *Router {
	return &Router{
		handlers: make(map[string]rawHandler),
		validate: validator.New(),
	}
}

// Register binds an event to a strongly‑typed handler.
func Register[Req any](r *Router, event string, h func(c *Conn, req Req) error) {
	if event == "" {
		panic("relay router: empty event")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[event] = func(c *Conn, frame []byte) error {
		var req Req
		if err := json.Unmarshal(frame, &req); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFrame, err)
		}
		if n, ok := any(&req).(normalizer); ok {
			n.normalize()
		}
		if err := r.validate.Struct(&req); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFrame, err)
		}
		return h(c, req)
	}
}

// dispatch peeks at the frame's type tag and runs the matching handler.
func (r *Router) dispatch(c *Conn, frame []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}

	r.mu.RLock()
	h, ok := r.handlers[env.Type]
	r.mu.RUnlock()
	if !ok {
		return env.Type, ErrUnknownEvent
	}
	return env.Type, h(c, frame)
}
