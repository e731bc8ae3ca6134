// Package config centralizes all tunable game parameters.
package config

import (
	"math"
	"time"
)

// Arena - the logical play field in world units (origin top-left, y down).
// Rendering scales it to fit the terminal or browser canvas.
const (
	ArenaWidth  = 800
	ArenaHeight = 600
	HUDHeight   = 30 // Top band kept free of spawns for the timer text
)

// Player
const (
	PlayerSize  = 30  // Side of the player square
	PlayerSpeed = 6.0 // Units per movement tick
)

// Enemies
const (
	EnemySize        = 25
	EnemySpeedFactor = 1.15 // Enemy speed as a multiple of PlayerSpeed
	EnemyLifetime    = 9500 * time.Millisecond
	SpawnAttempts    = 20
	SpawnClearance   = PlayerSize * 2 // Minimum spawn distance from the player's center
)

// Difficulty
const (
	InitialEnemyMin = 3
	InitialEnemyMax = 6
	EnemyMinStep    = 3
	EnemyMaxStep    = 7
)

// Task cadences
const (
	TimerInterval      = time.Second
	PlayerInterval     = 20 * time.Millisecond
	SpawnInterval      = 10 * time.Second
	MoveInterval       = 50 * time.Millisecond
	HazardInterval     = 30 * time.Millisecond
	BossHazardInterval = 30 * time.Millisecond
	LevelUpInterval    = 20 * time.Second
)

// Scoring
const (
	PointsPerSecond = 10
)

// Boss
const (
	BossCycleSeconds   = 30 // Boss fight starts when elapsed % cycle == 0
	BossWarningSecond  = 29 // ...after a warning at elapsed % cycle == 29
	BossCoreSize       = 100
	BossMarkerSize     = 30
	BossMinRounds      = 4
	BossMaxRounds      = 8
	BossTelegraphDelay = 1000 * time.Millisecond
	BossStrikeWindow   = 800 * time.Millisecond
	BossRoundPause     = 400 * time.Millisecond
	BossCrossTick      = 50 * time.Millisecond
	BossCrossStep      = 6 * math.Pi / 180 // Radians per rotation tick
	BossCrossSteps     = 30                // Ticks per rotation pass (180 degrees)
	BossCrossReach     = 280               // Distance of the outermost cross marker from the center
	BossRingMarkers    = 24
	BossRingMinRadius  = 140
	BossRingMaxRadius  = 260
	BossDebrisCount    = 12
	BossDebrisSize     = 10
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
	MaxTermWidth          = 160 // Render area is clamped to this many columns
	MaxTermHeight         = 60  // ...and rows; larger terminals get a border
	MaxUsernameLength     = 16  // Maximum display length for player usernames
	BestScoresShown       = 5   // Entries in the best-scores table
)

// Web transport
const (
	WebFrameRate = 30
	WebFrameTime = time.Second / WebFrameRate
)
