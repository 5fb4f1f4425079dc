// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure returned from Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Agent      AgentConfig      `yaml:"agent"`
	Obstacle   ObstacleConfig   `yaml:"obstacle"`
	Ground     GroundConfig     `yaml:"ground"`
	Fitness    FitnessConfig    `yaml:"fitness"`
	Episode    EpisodeConfig    `yaml:"episode"`
	Controller ControllerConfig `yaml:"controller"`
	Neural     NeuralConfig     `yaml:"neural"`
	Evolution  EvolutionConfig  `yaml:"evolution"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the vertical playfield bounds.
// Screen coordinates: y grows downward, so the floor has the larger value.
type WorldConfig struct {
	FloorY   float64 `yaml:"floor_y"`   // Agent is out of bounds once its bottom edge reaches this
	CeilingY float64 `yaml:"ceiling_y"` // Agent is out of bounds once its top edge is above this
}

// AgentConfig holds agent body and kinematics parameters.
type AgentConfig struct {
	StartX      float64 `yaml:"start_x"`
	StartY      float64 `yaml:"start_y"`
	Width       int     `yaml:"width"`        // Collision body width in pixels
	Height      int     `yaml:"height"`       // Collision body height in pixels
	JumpImpulse float64 `yaml:"jump_impulse"` // Upward velocity set by a jump (applied as negative)
	Gravity     float64 `yaml:"gravity"`      // a in d = v0*t + 0.5*a*t^2
	MaxFall     float64 `yaml:"max_fall"`     // Per-tick displacement clamp
	RiseBoost   float64 `yaml:"rise_boost"`   // Extra upward displacement while rising
	MaxTilt     float64 `yaml:"max_tilt"`     // Degrees, nose up
	MinTilt     float64 `yaml:"min_tilt"`     // Degrees, nose down
	TiltRate    float64 `yaml:"tilt_rate"`    // Degrees per tick while diving
	TiltHold    float64 `yaml:"tilt_hold"`    // Stay nose-up until this far below the jump height
}

// ObstacleConfig holds barrier pair geometry and motion.
type ObstacleConfig struct {
	Width         int     `yaml:"width"`          // Barrier width in pixels
	BarrierHeight int     `yaml:"barrier_height"` // Height of each barrier body in pixels
	GapHeight     float64 `yaml:"gap_height"`
	Velocity      float64 `yaml:"velocity"` // Leftward scroll per tick
	SeedX         float64 `yaml:"seed_x"`   // X of the obstacle present at episode start
	SpawnX        float64 `yaml:"spawn_x"`  // X of obstacles spawned after a pass
	GapMin        int     `yaml:"gap_min"`  // Inclusive
	GapMax        int     `yaml:"gap_max"`  // Exclusive
}

// GroundConfig holds the scrolling floor strip (presentational).
type GroundConfig struct {
	TileWidth float64 `yaml:"tile_width"`
	Velocity  float64 `yaml:"velocity"`
}

// FitnessConfig holds the fitness shaping rules.
type FitnessConfig struct {
	Survive            float64 `yaml:"survive"`               // Per tick alive
	CollisionPenalty   float64 `yaml:"collision_penalty"`     // Subtracted on obstacle contact
	OutOfBoundsPenalty float64 `yaml:"out_of_bounds_penalty"` // Subtracted on leaving the playfield
	PassBonus          float64 `yaml:"pass_bonus"`            // Added to every survivor per passed obstacle
}

// EpisodeConfig bounds a single evaluation.
type EpisodeConfig struct {
	MaxTicks int `yaml:"max_ticks"`
}

// ControllerConfig holds how controller output is interpreted.
type ControllerConfig struct {
	DecisionThreshold float64 `yaml:"decision_threshold"` // Jump when output[0] exceeds this
}

// NeuralConfig holds the built-in feed-forward controller shape.
type NeuralConfig struct {
	Hidden     int     `yaml:"hidden"`
	InputScale float64 `yaml:"input_scale"` // Multiplies raw pixel inputs before the first layer
}

// EvolutionConfig holds parameters of the bundled training driver.
type EvolutionConfig struct {
	Population     int     `yaml:"population"`
	Generations    int     `yaml:"generations"`
	Elite          int     `yaml:"elite"`
	TournamentSize int     `yaml:"tournament_size"`
	MutationRate   float64 `yaml:"mutation_rate"`
	MutationSigma  float64 `yaml:"mutation_sigma"`
	BigRate        float64 `yaml:"big_rate"`
	BigSigma       float64 `yaml:"big_sigma"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	HallOfFameSize int `yaml:"hall_of_fame_size"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32 float32 // Screen.Width as float32
	ScreenH32 float32 // Screen.Height as float32
	GapRange  int     // Obstacle.GapMax - Obstacle.GapMin
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are broken: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.GapRange = c.Obstacle.GapMax - c.Obstacle.GapMin
}

// Validate reports every setting the simulation cannot run with.
// The returned error wraps ErrInvalid once per violation.
// It does not modify c, so one Config may be validated from many goroutines.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...)))
		}
	}

	check(c.Obstacle.GapHeight > 0, "obstacle.gap_height must be positive, got %v", c.Obstacle.GapHeight)
	check(c.Obstacle.Velocity > 0, "obstacle.velocity must be positive, got %v", c.Obstacle.Velocity)
	check(c.Obstacle.Width > 0, "obstacle.width must be positive, got %d", c.Obstacle.Width)
	check(c.Obstacle.BarrierHeight > 0, "obstacle.barrier_height must be positive, got %d", c.Obstacle.BarrierHeight)
	check(c.Obstacle.GapMax > c.Obstacle.GapMin, "obstacle gap range [%d, %d) is empty", c.Obstacle.GapMin, c.Obstacle.GapMax)
	check(c.Ground.Velocity >= 0, "ground.velocity must not be negative, got %v", c.Ground.Velocity)
	check(c.Agent.MaxFall > 0, "agent.max_fall must be positive, got %v", c.Agent.MaxFall)
	check(c.Agent.JumpImpulse > 0, "agent.jump_impulse must be positive, got %v", c.Agent.JumpImpulse)
	check(c.Agent.Width > 0 && c.Agent.Height > 0, "agent body %dx%d must be positive", c.Agent.Width, c.Agent.Height)
	check(c.World.FloorY > c.World.CeilingY, "world.floor_y (%v) must be below world.ceiling_y (%v)", c.World.FloorY, c.World.CeilingY)
	check(c.Episode.MaxTicks > 0, "episode.max_ticks must be positive, got %d", c.Episode.MaxTicks)
	finite := []struct {
		name string
		v    float64
	}{
		{"controller.decision_threshold", c.Controller.DecisionThreshold},
		{"agent.gravity", c.Agent.Gravity},
		{"agent.rise_boost", c.Agent.RiseBoost},
		{"agent.max_fall", c.Agent.MaxFall},
		{"agent.jump_impulse", c.Agent.JumpImpulse},
		{"world.floor_y", c.World.FloorY},
		{"world.ceiling_y", c.World.CeilingY},
		{"obstacle.gap_height", c.Obstacle.GapHeight},
		{"obstacle.velocity", c.Obstacle.Velocity},
		{"fitness.survive", c.Fitness.Survive},
		{"fitness.collision_penalty", c.Fitness.CollisionPenalty},
		{"fitness.out_of_bounds_penalty", c.Fitness.OutOfBoundsPenalty},
		{"fitness.pass_bonus", c.Fitness.PassBonus},
	}
	for _, f := range finite {
		check(!math.IsNaN(f.v) && !math.IsInf(f.v, 0), "%s must be finite, got %v", f.name, f.v)
	}

	return errors.Join(errs...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
