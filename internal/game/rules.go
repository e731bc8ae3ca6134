// Package game implements the survival simulation: player and enemy
// movement, spawning, boss attack patterns, difficulty scaling and the
// session state machine. Everything in this package runs on a single actor
// goroutine driven by a sched.Scheduler; nothing here is safe for
// concurrent use.
package game

import (
	"time"

	"github.com/tomz197/survival/internal/loop/config"
	"github.com/tomz197/survival/internal/physics"
)

// Rules holds every tuning value of a session.
type Rules struct {
	Width, Height float64
	HUDHeight     float64

	PlayerHalf  float64
	PlayerSpeed float64

	EnemyHalf      float64
	EnemySpeed     float64
	EnemyLifetime  time.Duration
	SpawnAttempts  int
	SpawnClearance float64 // spawn candidates closer than this to the player are rejected

	InitialMin, InitialMax int
	MinStep, MaxStep       int
	PointsPerSecond        int

	TimerInterval      time.Duration
	PlayerInterval     time.Duration
	SpawnInterval      time.Duration
	MoveInterval       time.Duration
	HazardInterval     time.Duration
	BossHazardInterval time.Duration
	LevelUpInterval    time.Duration

	Boss BossRules
}

// BossRules tunes the boss choreography.
type BossRules struct {
	Enabled       bool
	CycleSeconds  int
	WarningSecond int
	CoreHalf      float64
	MarkerHalf    float64
	MinRounds     int
	MaxRounds     int

	TelegraphDelay time.Duration
	StrikeWindow   time.Duration
	RoundPause     time.Duration

	CrossTick  time.Duration
	CrossStep  float64 // radians
	CrossSteps int
	CrossReach float64

	RingMarkers   int
	RingMinRadius float64
	RingMaxRadius float64

	DebrisCount int
	DebrisHalf  float64
}

// DefaultRules returns the standard game tuning.
func DefaultRules() Rules {
	return Rules{
		Width:     config.ArenaWidth,
		Height:    config.ArenaHeight,
		HUDHeight: config.HUDHeight,

		PlayerHalf:  config.PlayerSize / 2,
		PlayerSpeed: config.PlayerSpeed,

		EnemyHalf:      config.EnemySize / 2.0,
		EnemySpeed:     config.PlayerSpeed * config.EnemySpeedFactor,
		EnemyLifetime:  config.EnemyLifetime,
		SpawnAttempts:  config.SpawnAttempts,
		SpawnClearance: config.SpawnClearance,

		InitialMin:      config.InitialEnemyMin,
		InitialMax:      config.InitialEnemyMax,
		MinStep:         config.EnemyMinStep,
		MaxStep:         config.EnemyMaxStep,
		PointsPerSecond: config.PointsPerSecond,

		TimerInterval:      config.TimerInterval,
		PlayerInterval:     config.PlayerInterval,
		SpawnInterval:      config.SpawnInterval,
		MoveInterval:       config.MoveInterval,
		HazardInterval:     config.HazardInterval,
		BossHazardInterval: config.BossHazardInterval,
		LevelUpInterval:    config.LevelUpInterval,

		Boss: BossRules{
			Enabled:        true,
			CycleSeconds:   config.BossCycleSeconds,
			WarningSecond:  config.BossWarningSecond,
			CoreHalf:       config.BossCoreSize / 2,
			MarkerHalf:     config.BossMarkerSize / 2,
			MinRounds:      config.BossMinRounds,
			MaxRounds:      config.BossMaxRounds,
			TelegraphDelay: config.BossTelegraphDelay,
			StrikeWindow:   config.BossStrikeWindow,
			RoundPause:     config.BossRoundPause,
			CrossTick:      config.BossCrossTick,
			CrossStep:      config.BossCrossStep,
			CrossSteps:     config.BossCrossSteps,
			CrossReach:     config.BossCrossReach,
			RingMarkers:    config.BossRingMarkers,
			RingMinRadius:  config.BossRingMinRadius,
			RingMaxRadius:  config.BossRingMaxRadius,
			DebrisCount:    config.BossDebrisCount,
			DebrisHalf:     config.BossDebrisSize / 2,
		},
	}
}

// Arena returns the arena bounds.
func (r Rules) Arena() physics.AABB {
	return physics.Rect(0, 0, r.Width, r.Height)
}

// EnemySize is the full side of an enemy square; enemy pairs whose centers
// are closer than this collide.
func (r Rules) EnemySize() float64 {
	return 2 * r.EnemyHalf
}
