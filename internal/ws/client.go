package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tomz197/survival/internal/game"
	"github.com/tomz197/survival/internal/input"
	"github.com/tomz197/survival/internal/loop/server"
	"github.com/tomz197/survival/internal/render"
	"github.com/tomz197/survival/internal/sched"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// Client is one browser connection playing its own session.
type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	server server.GameServer
	handle *server.ClientHandle
	log    *log.Logger

	rules game.Rules
	loop  *sched.Loop
	scene *render.Scene
	ctrl  *game.Controller // only touched on the loop goroutine
	state atomicState
	seed  int64

	sendMu     sync.Mutex
	sendClosed bool
}

// atomicState mirrors the controller state for the frame goroutine.
type atomicState struct {
	v atomic.Int32
}

func (a *atomicState) Load() game.State   { return game.State(a.v.Load()) }
func (a *atomicState) Store(s game.State) { a.v.Store(int32(s)) }

// NewClient creates a client for an upgraded connection and registers it.
func NewClient(conn *websocket.Conn, gs server.GameServer, username string, rules game.Rules, logger *log.Logger) *Client {
	handle := gs.RegisterClient(username)
	return &Client{
		Conn:   conn,
		Send:   make(chan []byte, 64),
		server: gs,
		handle: handle,
		log:    logger.With("client", handle.ID, "user", handle.Username),
		rules:  rules,
		loop:   sched.NewLoop(nil),
		scene:  render.NewScene(rules.Width, rules.Height),
		seed:   time.Now().UnixNano(),
	}
}

// Serve runs the session until the browser disconnects, the server shuts
// down or ctx is cancelled. frameTime is the snapshot interval.
func (c *Client) Serve(ctx context.Context, frameTime time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.loop.Run(ctx)

	c.do(func() {
		c.ctrl = game.NewController(game.Options{
			Rules:     c.rules,
			Surface:   c.scene,
			Scheduler: c.loop.Scheduler(),
			Rand:      rand.New(rand.NewSource(c.seed)),
			Logger:    c.log,
			OnGameOver: func(r game.Result) {
				c.state.Store(game.StateGameOver)
				c.server.ReportResult(c.handle.ID, r)
			},
		})
	})

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		c.WritePump()
	}()
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		c.ReadPump()
	}()

	c.frames(ctx, readDone, frameTime)

	// Teardown: stop the session, then the loop, then the socket.
	c.do(func() {
		if c.ctrl != nil {
			c.ctrl.Close()
		}
	})
	cancel()
	<-c.loop.Done()
	c.closeSend()
	<-writeDone
	c.Conn.Close()
	<-readDone
	c.server.UnregisterClient(c.handle.ID)
}

// frames pushes scene snapshots until the reader stops or the server asks
// the client to leave. Identical consecutive frames are skipped.
func (c *Client) frames(ctx context.Context, readDone <-chan struct{}, frameTime time.Duration) {
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	var items []render.Item
	var last []byte
	for {
		select {
		case <-ctx.Done():
			return
		case <-readDone:
			return
		case ev, ok := <-c.handle.EventsCh:
			if !ok {
				return
			}
			switch ev.Type {
			case server.EventNewBest:
				c.sendMessage(TypeNewBest, NewBestMessage{Rank: ev.Rank + 1})
			case server.EventServerShutdown:
				c.sendMessage(TypeShutdown, nil)
				return
			}
		case <-ticker.C:
			items = c.scene.Snapshot(items)
			frame := NewFrame(c.rules.Width, c.rules.Height, c.state.Load(), items, c.server.GetSnapshot())
			msg, err := NewMessage(TypeFrame, frame)
			if err != nil {
				c.log.Error("failed to build frame", "err", err)
				continue
			}
			data, err := json.Marshal(msg)
			if err != nil {
				c.log.Error("failed to marshal frame", "err", err)
				continue
			}
			if bytes.Equal(data, last) {
				continue
			}
			last = data
			c.enqueue(data)
		}
	}
}

// ReadPump decodes browser messages and hands them to the session loop.
func (c *Client) ReadPump() {
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("websocket read error", "err", err)
			}
			return
		}
		if err := c.handleMessage(data); err != nil {
			c.log.Debug("bad message", "err", err)
			if b, err := json.Marshal(NewErrorMessage(err.Error())); err == nil {
				c.enqueue(b)
			}
		}
	}
}

// handleMessage routes one browser message.
func (c *Client) handleMessage(data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return errInvalidMessage
	}

	switch msg.Type {
	case TypeClick:
		c.loop.Post(func() {
			if c.ctrl.Click() {
				c.state.Store(game.StatePlaying)
				c.server.SetPlaying(c.handle.ID, true)
			}
		})
	case TypeKeyDown, TypeKeyUp:
		var km KeyMessage
		if err := json.Unmarshal(msg.Data, &km); err != nil {
			return errInvalidMessage
		}
		k, ok := input.ParseKey(km.Key)
		if !ok {
			return errUnknownKey
		}
		if msg.Type == TypeKeyDown {
			c.loop.Post(func() { c.ctrl.KeyDown(k) })
		} else {
			c.loop.Post(func() { c.ctrl.KeyUp(k) })
		}
	default:
		return errUnknownType
	}
	return nil
}

// WritePump pumps queued messages to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendMessage(msgType string, payload any) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		c.log.Error("failed to build message", "type", msgType, "err", err)
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("failed to marshal message", "type", msgType, "err", err)
		return
	}
	c.enqueue(data)
}

// enqueue drops the message when the browser falls behind or the client
// is closing.
func (c *Client) enqueue(data []byte) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return
	}
	select {
	case c.Send <- data:
	default:
		c.log.Warn("send buffer full, dropping message")
	}
}

// closeSend closes the send queue; WritePump answers with a close frame.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.sendClosed {
		c.sendClosed = true
		close(c.Send)
	}
}

// do runs fn on the session loop and waits for it.
func (c *Client) do(fn func()) {
	done := make(chan struct{})
	if !c.loop.Post(func() {
		defer close(done)
		fn()
	}) {
		return
	}
	select {
	case <-done:
	case <-c.loop.Done():
	}
}
