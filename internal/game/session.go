package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tomz197/survival/internal/input"
	"github.com/tomz197/survival/internal/physics"
	"github.com/tomz197/survival/internal/render"
	"github.com/tomz197/survival/internal/sched"
)

// HUD layout in arena units.
const (
	hudMargin  = 10
	hudStatusX = 180
)

// Result summarizes a finished session.
type Result struct {
	SessionID uuid.UUID
	Score     int
	Seconds   int
	Elapsed   time.Duration
	Fights    int // boss fights reached
}

// Session is one run from start to game over. It owns the player, the
// enemies, the boss and every task it scheduled.
type Session struct {
	ID         uuid.UUID
	Player     Player
	Keys       input.KeySet
	Enemies    *Registry
	Difficulty Difficulty

	rules   Rules
	arena   physics.AABB
	surface render.Surface
	tasks   *sched.Group
	rng     *rand.Rand
	sample  PointSampler
	log     *log.Logger
	boss    *Boss
	grid    *physics.SpatialGrid
	onOver  func(Result)

	startedAt time.Time
	running   bool
	result    Result

	timerText  render.Handle
	statusText render.Handle
}

func newSession(rules Rules, surface render.Surface, s sched.Scheduler, rng *rand.Rand, logger *log.Logger, onOver func(Result)) *Session {
	sess := &Session{
		ID:      uuid.New(),
		Enemies: NewRegistry(),
		Difficulty: Difficulty{
			Min: rules.InitialMin,
			Max: rules.InitialMax,
		},
		rules:   rules,
		arena:   rules.Arena(),
		surface: surface,
		tasks:   sched.NewGroup(s),
		rng:     rng,
		sample:  spawnSampler(rng, rules),
		log:     logger,
		onOver:  onOver,
		// A player and an enemy can only overlap when their centers are
		// within the sum of half-extents on each axis.
		grid: physics.NewSpatialGrid(rules.Width, rules.Height, rules.PlayerHalf+rules.EnemyHalf),
	}
	sess.boss = newBoss(sess, rules.Boss)
	return sess
}

// begin places the player and HUD and starts the periodic tasks. Player
// movement, spawning, enemy movement and the hazard checks also run once
// immediately.
func (s *Session) begin() {
	s.startedAt = s.tasks.Now()
	s.running = true

	cx, cy := s.center()
	s.Player = Player{X: cx, Y: cy, Half: s.rules.PlayerHalf, Speed: s.rules.PlayerSpeed}
	s.Player.Handle = s.surface.CreateRect(s.Player.Bounds(), render.ColorPlayer)
	s.timerText = s.surface.CreateText(hudMargin, hudMargin, render.AnchorNorthWest, "Time: 0", render.TextNormal)
	s.statusText = s.surface.CreateText(hudStatusX, hudMargin, render.AnchorNorthWest, s.status(), render.TextSmall)

	s.log.Info("session started", "session", s.ID)

	s.every(s.rules.TimerInterval, false, s.tickTimer)
	s.every(s.rules.PlayerInterval, true, s.movePlayer)
	s.every(s.rules.SpawnInterval, true, s.spawnEnemies)
	s.every(s.rules.MoveInterval, true, s.moveEnemies)
	s.every(s.rules.LevelUpInterval, false, s.levelUp)
	s.every(s.rules.HazardInterval, true, s.checkHazards)
	if s.rules.Boss.Enabled {
		s.every(s.rules.BossHazardInterval, true, s.checkBossHazards)
	}
}

// every runs step each interval while the session is running. The task
// re-arms itself at the end of each run, so it stops by itself once the
// running flag is cleared. A non-positive interval disables the task.
func (s *Session) every(interval time.Duration, runNow bool, step func()) {
	if interval <= 0 {
		return
	}

	var tick func()
	tick = func() {
		if !s.running {
			return
		}
		step()
		if s.running {
			s.tasks.Schedule(interval, tick)
		}
	}

	if runNow {
		tick()
		return
	}
	s.tasks.Schedule(interval, tick)
}

// Running reports whether the session is still in play.
func (s *Session) Running() bool {
	return s.running
}

// Boss returns the session's boss choreographer.
func (s *Session) Boss() *Boss {
	return s.boss
}

// Elapsed returns the play time so far, or the final play time once over.
func (s *Session) Elapsed() time.Duration {
	if !s.running {
		return s.result.Elapsed
	}
	return s.tasks.Now().Sub(s.startedAt)
}

// Seconds returns the whole seconds played.
func (s *Session) Seconds() int {
	return int(s.Elapsed() / time.Second)
}

// Score returns the current score.
func (s *Session) Score() int {
	return s.Seconds() * s.rules.PointsPerSecond
}

// Result returns the final result; ok is false while the session runs.
func (s *Session) Result() (Result, bool) {
	return s.result, !s.running && s.result.SessionID != uuid.Nil
}

// PendingTasks returns the number of scheduled callbacks still outstanding.
func (s *Session) PendingTasks() int {
	return s.tasks.Pending()
}

func (s *Session) center() (float64, float64) {
	return s.rules.Width / 2, s.rules.Height / 2
}

func (s *Session) tickTimer() {
	secs := s.Seconds()
	s.surface.SetText(s.timerText, fmt.Sprintf("Time: %d", secs))
	s.boss.OnSecond(secs)
	s.surface.SetText(s.statusText, s.status())
}

func (s *Session) status() string {
	text := fmt.Sprintf("Score: %d  Wave: %d-%d", s.Score(), s.Difficulty.Min, s.Difficulty.Max)
	if s.boss.Engaged() {
		text += "  BOSS"
	}
	return text
}

func (s *Session) movePlayer() {
	StepPlayer(&s.Player, s.Keys, s.arena)
	s.surface.SetRectBounds(s.Player.Handle, s.Player.Bounds())
}

func (s *Session) moveEnemies() {
	StepEnemies(s.Enemies.All(), s.arena)
	for _, e := range s.Enemies.All() {
		s.surface.SetRectBounds(e.Handle, e.Bounds())
	}
}

func (s *Session) levelUp() {
	s.Difficulty.LevelUp(s.rules.MinStep, s.rules.MaxStep)
	s.log.Debug("difficulty increased", "session", s.ID, "min", s.Difficulty.Min, "max", s.Difficulty.Max)
}

// checkHazards ends the session when the player touches an enemy.
func (s *Session) checkHazards() {
	enemies := s.Enemies.All()
	if len(enemies) == 0 {
		return
	}

	s.grid.Clear()
	for i, e := range enemies {
		s.grid.Insert(e.X, e.Y, i)
	}

	pb := s.Player.Bounds()
	hit := false
	s.grid.QueryAround(s.Player.X, s.Player.Y, func(i int) bool {
		hit = enemies[i].Bounds().Intersects(pb)
		return hit
	})
	if hit {
		s.GameOver()
	}
}

// checkBossHazards ends the session when the player touches a hazardous marker.
func (s *Session) checkBossHazards() {
	if s.boss.Hits(s.Player.Bounds()) {
		s.GameOver()
	}
}

// GameOver ends the session: the running flag is cleared first so in-flight
// tasks stop re-arming, then every outstanding task is canceled and the end
// screen is drawn. Calls after the first do nothing and report false.
func (s *Session) GameOver() bool {
	if !s.running {
		return false
	}
	s.running = false

	elapsed := s.tasks.Now().Sub(s.startedAt)
	canceled := s.tasks.CancelAll()
	secs := int(elapsed / time.Second)
	s.result = Result{
		SessionID: s.ID,
		Score:     secs * s.rules.PointsPerSecond,
		Seconds:   secs,
		Elapsed:   elapsed,
		Fights:    s.boss.Fights,
	}

	cx, cy := s.center()
	s.surface.CreateText(cx, cy-30, render.AnchorCenter, "GAME OVER", render.TextTitle)
	s.surface.CreateText(cx, cy+10, render.AnchorCenter, fmt.Sprintf("Score: %d", s.result.Score), render.TextNormal)
	s.surface.CreateText(cx, cy+50, render.AnchorCenter, "Click to Retry", render.TextSmall)

	s.log.Info("game over", "session", s.ID, "score", s.result.Score, "elapsed", elapsed.Round(time.Millisecond), "canceled", canceled)

	if s.onOver != nil {
		s.onOver(s.result)
	}
	return true
}

// abort stops the session without a result.
func (s *Session) abort() {
	if !s.running {
		return
	}
	s.running = false
	s.tasks.CancelAll()
	s.log.Debug("session aborted", "session", s.ID)
}
