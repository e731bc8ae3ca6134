// Package ws serves the game to browsers over WebSocket. Each connection
// plays its own session; the browser sends key and click messages and
// receives JSON scene frames.
package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tomz197/survival/internal/game"
	"github.com/tomz197/survival/internal/loop/config"
	"github.com/tomz197/survival/internal/loop/server"
)

var (
	errInvalidMessage = errors.New("invalid message")
	errUnknownType    = errors.New("unknown message type")
	errUnknownKey     = errors.New("unknown key")
)

// Handler upgrades requests on the play endpoint.
type Handler struct {
	server    server.GameServer
	upgrader  websocket.Upgrader
	rules     game.Rules
	frameTime time.Duration
	log       *log.Logger
	ctx       context.Context
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	Rules     game.Rules      // zero value selects game.DefaultRules
	FrameTime time.Duration   // <= 0 selects config.WebFrameTime
	Logger    *log.Logger     // nil selects log.Default()
	Context   context.Context // cancelling it ends every session; nil means Background
}

// NewHandler creates a play endpoint backed by the given registry.
func NewHandler(gs server.GameServer, opts HandlerOptions) *Handler {
	if opts.Rules == (game.Rules{}) {
		opts.Rules = game.DefaultRules()
	}
	if opts.FrameTime <= 0 {
		opts.FrameTime = config.WebFrameTime
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	return &Handler{
		server: gs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // The page may be served from another host
			},
		},
		rules:     opts.Rules,
		frameTime: opts.FrameTime,
		log:       opts.Logger,
		ctx:       opts.Context,
	}
}

// ServeHTTP upgrades the connection and serves one session. It blocks
// until the session ends.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "err", err)
		return
	}

	client := NewClient(conn, h.server, r.URL.Query().Get("name"), h.rules, h.log)
	client.Serve(h.ctx, h.frameTime)
}
