package client

import (
	"sync/atomic"
	"time"

	"github.com/tomz197/survival/internal/game"
)

// ScreenState is what the client shows on top of the game scene.
type ScreenState int

const (
	ScreenMenu     ScreenState = iota // Title screen
	ScreenPlaying                     // Active session
	ScreenGameOver                    // Session ended, retry prompt
	ScreenShutdown                    // Server is shutting down
)

// screenFor maps the controller state to a screen.
func screenFor(s game.State) ScreenState {
	switch s {
	case game.StatePlaying:
		return ScreenPlaying
	case game.StateGameOver:
		return ScreenGameOver
	default:
		return ScreenMenu
	}
}

// ClientState holds per-connection UI state, owned by the client goroutine.
type ClientState struct {
	Running       bool          // Client loop running
	Shutdown      bool          // Server announced shutdown
	NewBest       int           // 1-based board rank of the last result, 0 if none
	delta         time.Duration // Frame delta time
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
	isInactive    bool          // Whether the client is in inactive warning state

	// Previous frame's view, to detect transitions that need a full clear.
	prevScreen  ScreenState
	wasInactive bool
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		Running: true,
	}
}

// gameState mirrors the controller state for the render goroutine. The
// controller itself lives on the session loop.
type gameState struct {
	v atomic.Int32
}

func (g *gameState) Load() game.State {
	return game.State(g.v.Load())
}

func (g *gameState) Store(s game.State) {
	g.v.Store(int32(s))
}
