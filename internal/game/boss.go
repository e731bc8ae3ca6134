package game

import (
	"math"
	"time"

	"github.com/tomz197/survival/internal/physics"
	"github.com/tomz197/survival/internal/render"
)

// BossPhase is the top-level boss state.
type BossPhase int

const (
	BossInactive BossPhase = iota
	BossWarning
	BossActive
)

func (p BossPhase) String() string {
	switch p {
	case BossInactive:
		return "inactive"
	case BossWarning:
		return "warning"
	case BossActive:
		return "active"
	default:
		return "unknown"
	}
}

// Pattern is a boss attack.
type Pattern int

const (
	PatternCross   Pattern = iota // rotating cross through the arena center
	PatternSweep                  // one half of the arena
	PatternCorners                // four corner blocks
	PatternRing                   // ring of squares around the center
)

// Patterns lists every attack pattern; rounds pick uniformly from it.
var Patterns = [...]Pattern{PatternCross, PatternSweep, PatternCorners, PatternRing}

func (p Pattern) String() string {
	switch p {
	case PatternCross:
		return "cross"
	case PatternSweep:
		return "sweep"
	case PatternCorners:
		return "corners"
	case PatternRing:
		return "ring"
	default:
		return "unknown"
	}
}

// AttackStage is the step of the current attack round.
type AttackStage int

const (
	StageIdle AttackStage = iota
	StageTelegraph
	StageStrike
	StagePause
)

// Marker is a boss attack square. Only hazardous markers hurt the player;
// the drawn color follows the flag.
type Marker struct {
	X, Y         float64 // center
	HalfW, HalfH float64
	Hazardous    bool
	Handle       render.Handle
}

// Bounds returns the marker's AABB.
func (m *Marker) Bounds() physics.AABB {
	return physics.AABB{MinX: m.X - m.HalfW, MinY: m.Y - m.HalfH, MaxX: m.X + m.HalfW, MaxY: m.Y + m.HalfH}
}

func markerColor(hazardous bool) render.Color {
	if hazardous {
		return render.ColorLethal
	}
	return render.ColorWarning
}

// Boss runs the boss choreography of one session.
type Boss struct {
	s     *Session
	rules BossRules

	Phase   BossPhase
	Pattern Pattern
	Stage   AttackStage
	Round   int // rounds started in the current fight
	Rounds  int // rounds in the current fight
	Fights  int // fights started this session

	core    *Marker
	markers []*Marker
	debris  []render.Handle
}

func newBoss(s *Session, rules BossRules) *Boss {
	return &Boss{s: s, rules: rules}
}

// Engaged reports whether a boss fight (warning included) is in progress.
func (b *Boss) Engaged() bool {
	return b.Phase != BossInactive
}

// Markers returns the core marker (if any) followed by the attack markers.
func (b *Boss) Markers() []*Marker {
	var out []*Marker
	if b.core != nil {
		out = append(out, b.core)
	}
	return append(out, b.markers...)
}

// Debris returns the number of cosmetic squares left by the last fight.
func (b *Boss) Debris() int {
	return len(b.debris)
}

// Hits reports whether box overlaps a hazardous marker.
func (b *Boss) Hits(box physics.AABB) bool {
	if b.core != nil && b.core.Hazardous && b.core.Bounds().Intersects(box) {
		return true
	}
	for _, m := range b.markers {
		if m.Hazardous && m.Bounds().Intersects(box) {
			return true
		}
	}
	return false
}

// OnSecond advances the boss state machine from the session clock.
func (b *Boss) OnSecond(elapsed int) {
	if !b.rules.Enabled || b.rules.CycleSeconds <= 0 {
		return
	}
	switch sec := elapsed % b.rules.CycleSeconds; {
	case b.Phase == BossInactive && sec == b.rules.WarningSecond:
		b.warn()
	case b.Phase == BossWarning && sec == 0:
		b.engage()
	}
}

func (b *Boss) warn() {
	b.Phase = BossWarning
	b.Fights++
	b.s.clearEnemies()

	cx, cy := b.s.center()
	b.core = b.addMarker(cx, cy, b.rules.CoreHalf, b.rules.CoreHalf)
	b.s.log.Debug("boss warning", "session", b.s.ID, "fight", b.Fights)
}

func (b *Boss) engage() {
	b.Phase = BossActive
	b.s.clearEnemies()
	b.setHazardous(b.core, true)

	b.Round = 0
	b.Rounds = randBetween(b.s.rng, b.rules.MinRounds, b.rules.MaxRounds)
	b.s.log.Debug("boss engaged", "session", b.s.ID, "rounds", b.Rounds)
	b.startRound()
}

func (b *Boss) startRound() {
	b.Round++
	b.Pattern = Patterns[b.s.rng.Intn(len(Patterns))]
	b.Stage = StageTelegraph

	switch b.Pattern {
	case PatternCross:
		b.layoutCross()
	case PatternSweep:
		b.layoutSweep()
	case PatternCorners:
		b.layoutCorners()
	case PatternRing:
		b.layoutRing()
	}

	b.after(b.rules.TelegraphDelay, b.strike)
}

func (b *Boss) strike() {
	b.Stage = StageStrike
	for _, m := range b.markers {
		b.setHazardous(m, true)
	}

	if b.Pattern == PatternCross {
		b.rotate(1)
		return
	}
	b.after(b.rules.StrikeWindow, b.finishRound)
}

// rotate performs rotation tick n of the cross: the first CrossSteps ticks
// turn clockwise, the next CrossSteps turn back.
func (b *Boss) rotate(n int) {
	if n > 2*b.rules.CrossSteps {
		b.finishRound()
		return
	}

	angle := b.rules.CrossStep
	if n > b.rules.CrossSteps {
		angle = -angle
	}
	cx, cy := b.s.center()
	for _, m := range b.markers {
		m.X, m.Y = physics.Rotate(m.X, m.Y, cx, cy, angle)
		b.s.surface.SetRectBounds(m.Handle, m.Bounds())
	}

	b.after(b.rules.CrossTick, func() { b.rotate(n + 1) })
}

func (b *Boss) finishRound() {
	b.clearMarkers()
	if b.Round >= b.Rounds {
		b.end()
		return
	}
	b.Stage = StagePause
	b.after(b.rules.RoundPause, b.startRound)
}

func (b *Boss) end() {
	if b.core != nil {
		b.s.surface.Delete(b.core.Handle)
		b.core = nil
	}
	b.Phase = BossInactive
	b.Stage = StageIdle
	b.spawnDebris()
	b.s.log.Debug("boss defeated", "session", b.s.ID, "rounds", b.Rounds)
}

// ClearDebris removes the cosmetic squares left by the last fight.
func (b *Boss) ClearDebris() {
	for _, h := range b.debris {
		b.s.surface.Delete(h)
	}
	b.debris = b.debris[:0]
}

func (b *Boss) spawnDebris() {
	half := b.rules.DebrisHalf
	for range b.rules.DebrisCount {
		x := float64(randBetween(b.s.rng, int(half), int(b.s.rules.Width-half)))
		y := float64(randBetween(b.s.rng, int(b.s.rules.HUDHeight+half), int(b.s.rules.Height-half)))
		b.debris = append(b.debris, b.s.surface.CreateRect(physics.Square(x, y, half), render.ColorDebris))
	}
}

// after schedules fn on the session clock; fn is skipped once the session ended.
func (b *Boss) after(d time.Duration, fn func()) {
	b.s.tasks.Schedule(d, func() {
		if !b.s.running {
			return
		}
		fn()
	})
}

func (b *Boss) addMarker(x, y, halfW, halfH float64) *Marker {
	m := &Marker{X: x, Y: y, HalfW: halfW, HalfH: halfH}
	m.Handle = b.s.surface.CreateRect(m.Bounds(), markerColor(false))
	return m
}

func (b *Boss) setHazardous(m *Marker, hazardous bool) {
	if m == nil {
		return
	}
	m.Hazardous = hazardous
	b.s.surface.SetRectColor(m.Handle, markerColor(hazardous))
}

func (b *Boss) clearMarkers() {
	for _, m := range b.markers {
		b.s.surface.Delete(m.Handle)
	}
	b.markers = b.markers[:0]
}

func (b *Boss) layoutCross() {
	cx, cy := b.s.center()
	half := b.rules.MarkerHalf
	if half <= 0 {
		return
	}
	for d := b.rules.CoreHalf + half; d <= b.rules.CrossReach; d += 2 * half {
		b.markers = append(b.markers,
			b.addMarker(cx+d, cy, half, half),
			b.addMarker(cx-d, cy, half, half),
			b.addMarker(cx, cy+d, half, half),
			b.addMarker(cx, cy-d, half, half),
		)
	}
}

func (b *Boss) layoutSweep() {
	w, h := b.s.rules.Width, b.s.rules.Height
	var r physics.AABB
	switch b.s.rng.Intn(4) {
	case 0:
		r = physics.Rect(0, 0, w/2, h)
	case 1:
		r = physics.Rect(w/2, 0, w/2, h)
	case 2:
		r = physics.Rect(0, 0, w, h/2)
	default:
		r = physics.Rect(0, h/2, w, h/2)
	}
	b.addRect(r)
}

func (b *Boss) layoutCorners() {
	w, h := b.s.rules.Width, b.s.rules.Height
	cw, ch := w*0.3, h*0.3
	b.addRect(physics.Rect(0, 0, cw, ch))
	b.addRect(physics.Rect(w-cw, 0, cw, ch))
	b.addRect(physics.Rect(0, h-ch, cw, ch))
	b.addRect(physics.Rect(w-cw, h-ch, cw, ch))
}

func (b *Boss) layoutRing() {
	cx, cy := b.s.center()
	n := max(b.rules.RingMarkers, 1)
	radius := b.rules.RingMinRadius + b.s.rng.Float64()*(b.rules.RingMaxRadius-b.rules.RingMinRadius)
	for i := range n {
		a := 2 * math.Pi * float64(i) / float64(n)
		b.markers = append(b.markers, b.addMarker(cx+radius*math.Cos(a), cy+radius*math.Sin(a), b.rules.MarkerHalf, b.rules.MarkerHalf))
	}
}

func (b *Boss) addRect(r physics.AABB) {
	cx, cy := r.Center()
	b.markers = append(b.markers, b.addMarker(cx, cy, r.Width()/2, r.Height()/2))
}
