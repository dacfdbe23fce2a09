// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all server, rule, and clock settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func init() {
	// Best-effort local override file; absence is not an error.
	_ = godotenv.Load()
}

// =============================================================================
// NETWORK CONFIGURATION
// =============================================================================

// NetworkConfig holds UDP listener settings.
type NetworkConfig struct {
	Port          int
	TickRate      int // ticks per second; tick period = 1s / TickRate
	RecvQueueSize int // bounded channel capacity between the recv goroutine and the tick loop
}

// DefaultNetwork returns the default network configuration.
func DefaultNetwork() NetworkConfig {
	return NetworkConfig{
		Port:          27585,
		TickRate:      100, // 10ms tick
		RecvQueueSize: 256,
	}
}

// NetworkFromEnv overlays environment variable values onto the defaults.
func NetworkFromEnv() NetworkConfig {
	cfg := DefaultNetwork()

	if p := getEnvInt("HOCKEY_PORT", 0); p > 0 {
		cfg.Port = p
	}
	if tr := getEnvInt("HOCKEY_TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if q := getEnvInt("HOCKEY_RECV_QUEUE", 0); q > 0 {
		cfg.RecvQueueSize = q
	}

	return cfg
}

// =============================================================================
// SERVER / SESSION CONFIGURATION
// =============================================================================

// ServerMode selects the match-clock driving mode.
type ServerMode int

const (
	ModeMatch ServerMode = iota
	ModePermanentWarmup
)

// ServerConfig holds session and admin-facing settings.
type ServerConfig struct {
	ServerName        string
	Public            bool
	PlayerMax         int // session table size (hard cap 64)
	TeamMax           int
	Welcome           []string
	Password          string
	Mode              ServerMode
	SpawnPoint        SpawnPoint
	CheatsEnabled     bool
	ReplaysEnabled    bool
	ForceTeamParity   bool
	LimitJumpSpeed    bool
	InactivityTimeout int // ticks before a session is force-removed

	// CylinderPuckPostCollision is passed through verbatim to puck creation
	// (§6 "physics flag passed through to puck creation").
	CylinderPuckPostCollision bool
}

// SpawnPoint selects initial skater placement on warmup/faceoff.
type SpawnPoint int

const (
	SpawnCenter SpawnPoint = iota
	SpawnBench
)

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		ServerName:        "Untitled rink",
		Public:             true,
		PlayerMax:          64,
		TeamMax:            5,
		Welcome:            nil,
		Password:           "",
		Mode:               ModeMatch,
		SpawnPoint:         SpawnCenter,
		CheatsEnabled:      false,
		ReplaysEnabled:     true,
		ForceTeamParity:    false,
		LimitJumpSpeed:     true,
		InactivityTimeout:  500,
	}
}

// ServerFromEnv overlays environment variable values onto the defaults.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if name := os.Getenv("HOCKEY_SERVER_NAME"); name != "" {
		cfg.ServerName = name
	}
	if pw := os.Getenv("HOCKEY_PASSWORD"); pw != "" {
		cfg.Password = pw
	}
	if pm := getEnvInt("HOCKEY_PLAYER_MAX", 0); pm > 0 && pm <= 64 {
		cfg.PlayerMax = pm
	}
	if tm := getEnvInt("HOCKEY_TEAM_MAX", 0); tm > 0 {
		cfg.TeamMax = tm
	}
	if os.Getenv("HOCKEY_PERMANENT_WARMUP") == "true" {
		cfg.Mode = ModePermanentWarmup
	}
	if os.Getenv("HOCKEY_CHEATS") == "true" {
		cfg.CheatsEnabled = true
	}
	if os.Getenv("HOCKEY_REPLAYS") == "false" {
		cfg.ReplaysEnabled = false
	}
	if os.Getenv("HOCKEY_SPAWN_BENCH") == "true" {
		cfg.SpawnPoint = SpawnBench
	}

	return cfg
}

// =============================================================================
// MATCH CLOCK CONFIGURATION
// =============================================================================

// MatchConfig holds clock/faceoff cadence settings, in centiseconds unless noted.
type MatchConfig struct {
	TimePeriod      int
	TimeWarmup      int
	TimeBreak       int
	TimeIntermission int
	TimeOvertime    int // period/shootout attempt length when period > 3
	WarmupPucks     int
	MercyRule       int // score differential that force-ends the game; 0 disables
}

// DefaultMatch returns the default match clock configuration.
func DefaultMatch() MatchConfig {
	return MatchConfig{
		TimePeriod:       1200 * 100, // 20 minutes, in centiseconds
		TimeWarmup:       300 * 100,
		TimeBreak:        200,
		TimeIntermission: 1500,
		TimeOvertime:     1500,
		WarmupPucks:      1,
		MercyRule:        0,
	}
}

// MatchFromEnv overlays environment variable values onto the defaults.
func MatchFromEnv() MatchConfig {
	cfg := DefaultMatch()

	if v := getEnvInt("HOCKEY_TIME_PERIOD", 0); v > 0 {
		cfg.TimePeriod = v
	}
	if v := getEnvInt("HOCKEY_TIME_WARMUP", 0); v > 0 {
		cfg.TimeWarmup = v
	}
	if v := getEnvInt("HOCKEY_TIME_BREAK", 0); v > 0 {
		cfg.TimeBreak = v
	}
	if v := getEnvInt("HOCKEY_TIME_INTERMISSION", 0); v > 0 {
		cfg.TimeIntermission = v
	}
	if v := getEnvInt("HOCKEY_MERCY_RULE", 0); v > 0 {
		cfg.MercyRule = v
	}

	return cfg
}

// =============================================================================
// RULE ENGINE CONFIGURATION
// =============================================================================

// OffsidePolicy selects how PuckEnteredOffensiveZone is adjudicated.
type OffsidePolicy int

const (
	OffsideOff OffsidePolicy = iota
	OffsideDelayed
	OffsideImmediate
)

// IcingPolicy selects how PuckPassedGoalLine is adjudicated.
type IcingPolicy int

const (
	IcingOff IcingPolicy = iota
	IcingTouch
	IcingNoTouch
)

// RuleConfig holds the rule engine's configurable policies.
type RuleConfig struct {
	Offside OffsidePolicy
	Icing   IcingPolicy
}

// DefaultRule returns the default rule engine configuration.
func DefaultRule() RuleConfig {
	return RuleConfig{
		Offside: OffsideDelayed,
		Icing:   IcingTouch,
	}
}

// RuleFromEnv overlays environment variable values onto the defaults.
func RuleFromEnv() RuleConfig {
	cfg := DefaultRule()

	switch os.Getenv("HOCKEY_OFFSIDE") {
	case "off":
		cfg.Offside = OffsideOff
	case "immediate":
		cfg.Offside = OffsideImmediate
	case "delayed":
		cfg.Offside = OffsideDelayed
	}

	switch os.Getenv("HOCKEY_ICING") {
	case "off":
		cfg.Icing = IcingOff
	case "notouch":
		cfg.Icing = IcingNoTouch
	case "touch":
		cfg.Icing = IcingTouch
	}

	return cfg
}

// =============================================================================
// MINI-GAME SCHEDULER CONFIGURATION
// =============================================================================

// MinigameConfig holds the between-match voting/warmup/run/cleanup cadence
// and the seed used for deterministic replay of tie-breaks and eligible
// player selection.
type MinigameConfig struct {
	Seed          int64
	VotingTicks   int
	WarmupTicks   int
	RunningTicks  int
	CleanupTicks  int
	DefaultGravity float64
}

// DefaultMinigame returns the default mini-game scheduler configuration.
func DefaultMinigame() MinigameConfig {
	return MinigameConfig{
		Seed:           1,
		VotingTicks:    1500,
		WarmupTicks:    500,
		RunningTicks:   6000,
		CleanupTicks:   300,
		DefaultGravity: 1.0,
	}
}

// MinigameFromEnv overlays environment variable values onto the defaults.
func MinigameFromEnv() MinigameConfig {
	cfg := DefaultMinigame()
	if v := getEnvInt("HOCKEY_MINIGAME_SEED", 0); v > 0 {
		cfg.Seed = int64(v)
	}
	return cfg
}

// =============================================================================
// REPLAY CONFIGURATION
// =============================================================================

// ReplayConfig holds replay-file writer settings.
type ReplayConfig struct {
	Enabled bool
	Dir     string
}

// DefaultReplay returns the default replay configuration.
func DefaultReplay() ReplayConfig {
	return ReplayConfig{
		Enabled: true,
		Dir:     "replays",
	}
}

// ReplayFromEnv overlays environment variable values onto the defaults.
func ReplayFromEnv() ReplayConfig {
	cfg := DefaultReplay()
	if dir := os.Getenv("HOCKEY_REPLAY_DIR"); dir != "" {
		cfg.Dir = dir
	}
	if os.Getenv("HOCKEY_REPLAYS") == "false" {
		cfg.Enabled = false
	}
	return cfg
}

// =============================================================================
// MASTER SERVER CONFIGURATION
// =============================================================================

// MasterServerConfig holds heartbeat/discovery settings.
type MasterServerConfig struct {
	Enabled         bool
	ResolveURL      string
	HeartbeatPeriod int // seconds between heartbeats within a burst
	BurstCount      int // heartbeats per burst
	ReresolvePeriod int // seconds between re-resolution attempts when unreachable
}

// DefaultMasterServer returns the default master-server configuration.
func DefaultMasterServer() MasterServerConfig {
	return MasterServerConfig{
		Enabled:         false,
		ResolveURL:      "",
		HeartbeatPeriod: 5,
		BurstCount:      60,
		ReresolvePeriod: 15,
	}
}

// MasterServerFromEnv overlays environment variable values onto the defaults.
func MasterServerFromEnv() MasterServerConfig {
	cfg := DefaultMasterServer()
	if url := os.Getenv("HOCKEY_MASTER_URL"); url != "" {
		cfg.ResolveURL = url
		cfg.Enabled = true
	}
	return cfg
}

// =============================================================================
// ADMIN HTTP CONFIGURATION
// =============================================================================

// AdminConfig holds the ops-facing HTTP surface settings.
type AdminConfig struct {
	Addr           string
	AllowedOrigins []string
}

// DefaultAdmin returns the default admin HTTP configuration.
func DefaultAdmin() AdminConfig {
	return AdminConfig{
		Addr:           ":8090",
		AllowedOrigins: []string{"*"},
	}
}

// AdminFromEnv overlays environment variable values onto the defaults.
func AdminFromEnv() AdminConfig {
	cfg := DefaultAdmin()
	if addr := os.Getenv("HOCKEY_ADMIN_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Network NetworkConfig
	Server  ServerConfig
	Match    MatchConfig
	Rule     RuleConfig
	Minigame MinigameConfig
	Replay   ReplayConfig
	Master   MasterServerConfig
	Admin    AdminConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Network:  NetworkFromEnv(),
		Server:   ServerFromEnv(),
		Match:    MatchFromEnv(),
		Rule:     RuleFromEnv(),
		Minigame: MinigameFromEnv(),
		Replay:   ReplayFromEnv(),
		Master:   MasterServerFromEnv(),
		Admin:    AdminFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
