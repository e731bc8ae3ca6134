// Package client runs one terminal connection: it owns a game session
// actor, feeds it keyboard input and renders its scene to the terminal.
package client

import (
	"bufio"
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/survival/internal/draw"
	"github.com/tomz197/survival/internal/game"
	"github.com/tomz197/survival/internal/input"
	"github.com/tomz197/survival/internal/loop/config"
	"github.com/tomz197/survival/internal/loop/server"
	"github.com/tomz197/survival/internal/render"
	"github.com/tomz197/survival/internal/sched"
)

// Client handles rendering and input for a single connection.
type Client struct {
	server       server.GameServer
	handle       *server.ClientHandle
	state        *ClientState
	game         gameState
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	termSizeFunc draw.TermSizeFunc
	log          *log.Logger

	// Session actor: the controller is only touched on the loop goroutine.
	rules  game.Rules
	loop   *sched.Loop
	scene  *render.Scene
	ctrl   *game.Controller
	seed   int64
	items  []render.Item // Reused scene snapshot buffer
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	KeyHold      time.Duration // <= 0 selects input.DefaultKeyHold
	Rules        game.Rules    // zero value selects game.DefaultRules
	Seed         int64         // 0 seeds from the clock
	Logger       *log.Logger
}

// NewClient creates a new client registered with the given server.
func NewClient(gs server.GameServer, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	rules := opts.Rules
	if rules == (game.Rules{}) {
		rules = game.DefaultRules()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	handle := gs.RegisterClient(opts.Username)

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight, _ := draw.TerminalSizeRawWith(termSizeFunc)
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, rules.Width, rules.Height)
	canvas.SetOffset(offsetCol, offsetRow)
	chunkWriter := draw.NewChunkWriter(w, offsetCol, offsetRow)

	return &Client{
		server:       gs,
		handle:       handle,
		state:        NewClientState(),
		canvas:       canvas,
		chunkWriter:  chunkWriter,
		writer:       w,
		lastInput:    time.Now(),
		inputStream:  input.StartStream(r, opts.KeyHold),
		termSizeFunc: termSizeFunc,
		log:          logger.With("client", handle.ID, "user", handle.Username),
		rules:        rules,
		loop:         sched.NewLoop(nil),
		scene:        render.NewScene(rules.Width, rules.Height),
		seed:         seed,
	}
}

// Run starts the client loop. Blocks until the client disconnects, the
// context is cancelled or the server shutdown countdown runs out.
func (c *Client) Run(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.loop.Run(loopCtx)

	c.do(func() {
		c.ctrl = game.NewController(game.Options{
			Rules:      c.rules,
			Surface:    c.scene,
			Scheduler:  c.loop.Scheduler(),
			Rand:       rand.New(rand.NewSource(c.seed)),
			Logger:     c.log,
			OnGameOver: c.onGameOver,
		})
	})

	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)

	lastTime := time.Now()
	var err error

	for c.state.Running {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		select {
		case <-ctx.Done():
			c.state.Running = false
		default:
		}

		// Process input
		c.processInput(frameStart)

		// Check for server events
		c.processServerEvents()

		// Handle screen resize
		c.updateScreen()

		if c.state.Shutdown {
			c.updateShutdownState()
		}

		// Draw frame
		if err = c.drawFrame(); err != nil {
			break
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	// Stop the session before the loop goes away
	c.do(func() {
		if c.ctrl != nil {
			c.ctrl.Close()
		}
	})
	cancel()
	<-c.loop.Done()

	// Unregister from server
	c.server.UnregisterClient(c.handle.ID)

	draw.ClearScreen(c.writer)
	return err
}

// do runs fn on the session loop and waits for it. It returns at once if
// the loop has stopped.
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

// onGameOver runs on the session loop.
func (c *Client) onGameOver(r game.Result) {
	c.game.Store(game.StateGameOver)
	c.server.ReportResult(c.handle.ID, r)
}

// processInput reads input and forwards it to the session loop.
func (c *Client) processInput(now time.Time) {
	frame := c.inputStream.Poll(now)

	if frame.Active {
		c.lastInput = now
		c.state.isInactive = false
	} else if now.Sub(c.lastInput).Seconds() > config.InactivityDisconnectUser {
		c.log.Info("disconnecting inactive client")
		c.state.Running = false
	} else if now.Sub(c.lastInput).Seconds() > config.InactivityWarnUser {
		c.state.isInactive = true
	}

	if frame.Closed {
		c.state.Running = false
	}

	for _, ev := range frame.Events {
		switch ev.Kind {
		case input.EventQuit:
			c.state.Running = false
		case input.EventClick:
			if c.state.Shutdown {
				continue
			}
			c.startGame()
		case input.EventKeyDown:
			k := ev.Key
			c.loop.Post(func() { c.ctrl.KeyDown(k) })
		case input.EventKeyUp:
			k := ev.Key
			c.loop.Post(func() { c.ctrl.KeyUp(k) })
		}
	}
}

// startGame asks the controller for a new session. Held keys are forgotten
// so they produce fresh presses for the new session.
func (c *Client) startGame() {
	if c.game.Load() == game.StatePlaying {
		return
	}
	c.inputStream.Reset()
	c.state.NewBest = 0
	c.loop.Post(func() {
		if c.ctrl.Click() {
			c.game.Store(game.StatePlaying)
			c.server.SetPlaying(c.handle.ID, true)
		}
	})
}

// processServerEvents handles events from the server.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				// Server closed the channel
				c.state.Running = false
				return
			}
			switch event.Type {
			case server.EventNewBest:
				c.state.NewBest = event.Rank + 1
			case server.EventServerShutdown:
				c.state.Shutdown = true
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
				c.loop.Post(func() { c.ctrl.Close() })
			}
		default:
			return
		}
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area (e.g. old borders or offset content).
func (c *Client) updateScreen() {
	termWidth, termHeight, err := draw.TerminalSizeRawWith(c.termSizeFunc)
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution,
// shrinks one axis so the arena keeps its 4:3 shape (a cell is two pixels
// tall) and computes the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = max(min(termWidth, config.MaxTermWidth), 1)
	renderHeight = max(min(termHeight, config.MaxTermHeight), 1)

	// width : 2*height = 4 : 3
	if renderWidth*3 > renderHeight*8 {
		renderWidth = max(renderHeight*8/3, 1)
	} else {
		renderHeight = max(renderWidth*3/8, 1)
	}

	offsetCol = max((termWidth-renderWidth)/2, 0)
	offsetRow = max((termHeight-renderHeight)/2, 0)
	return
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}

// screen returns what to show this frame.
func (c *Client) screen() ScreenState {
	if c.state.Shutdown {
		return ScreenShutdown
	}
	return screenFor(c.game.Load())
}
