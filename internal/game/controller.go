package game

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/survival/internal/input"
	"github.com/tomz197/survival/internal/render"
	"github.com/tomz197/survival/internal/sched"
)

// State is the controller's top-level state.
type State int

const (
	StateMenu State = iota
	StatePlaying
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StatePlaying:
		return "playing"
	case StateGameOver:
		return "game over"
	default:
		return "unknown"
	}
}

// Options configures a Controller.
type Options struct {
	Rules      Rules           // zero value selects DefaultRules
	Surface    render.Surface  // required
	Scheduler  sched.Scheduler // required; the controller must only be used from its goroutine
	Rand       *rand.Rand      // nil selects a time-seeded source
	Logger     *log.Logger     // nil selects log.Default()
	OnGameOver func(Result)
}

// Controller is the Menu -> Playing -> GameOver state machine.
type Controller struct {
	opts    Options
	state   State
	session *Session
	played  int
}

// NewController creates a controller and draws the menu.
func NewController(opts Options) *Controller {
	if opts.Rules == (Rules{}) {
		opts.Rules = DefaultRules()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	c := &Controller{opts: opts}
	c.showMenu()
	return c
}

func (c *Controller) showMenu() {
	cx, cy := c.opts.Rules.Width/2, c.opts.Rules.Height/2
	c.opts.Surface.Clear()
	c.opts.Surface.CreateText(cx, cy, render.AnchorCenter, "Click to Play", render.TextTitle)
	c.opts.Surface.CreateText(cx, cy+40, render.AnchorCenter, "Move with arrows or WASD", render.TextSmall)
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Session returns the current or last session, nil before the first game.
func (c *Controller) Session() *Session {
	return c.session
}

// Played returns the number of sessions started.
func (c *Controller) Played() int {
	return c.played
}

// Click starts a new session from the menu or the game-over screen. It is
// ignored while a session is playing and reports whether a session started.
func (c *Controller) Click() bool {
	if c.state == StatePlaying {
		return false
	}

	c.opts.Surface.Clear()
	c.session = newSession(c.opts.Rules, c.opts.Surface, c.opts.Scheduler, c.opts.Rand, c.opts.Logger, c.finish)
	c.state = StatePlaying
	c.played++
	c.session.begin()
	return true
}

// KeyDown marks k as held. Presses outside of play are dropped.
func (c *Controller) KeyDown(k input.Key) {
	if c.session != nil && c.session.running {
		c.session.Keys.Add(k)
	}
}

// KeyUp releases k.
func (c *Controller) KeyUp(k input.Key) {
	if c.session != nil {
		c.session.Keys.Remove(k)
	}
}

// Close stops the current session without a result and cancels its tasks.
func (c *Controller) Close() {
	if c.session != nil {
		c.session.abort()
	}
}

func (c *Controller) finish(r Result) {
	c.state = StateGameOver
	if c.opts.OnGameOver != nil {
		c.opts.OnGameOver(r)
	}
}
