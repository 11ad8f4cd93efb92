package config

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full tuning surface of a table. Every field has a default in
// Default; a YAML file only needs to name what it changes.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Physics PhysicsConfig `json:"physics" yaml:"physics"`
	Field   FieldConfig   `json:"field" yaml:"field"`
	Ball    BallConfig    `json:"ball" yaml:"ball"`
	Kick    KickConfig    `json:"kick" yaml:"kick"`
	Goal    GoalConfig    `json:"goal" yaml:"goal"`
	Rods    RodsConfig    `json:"rods" yaml:"rods"`
	Teams   TeamsConfig   `json:"teams" yaml:"teams"`

	// Seed feeds the kickoff direction generator. Zero picks a time based seed.
	Seed uint64 `json:"seed" yaml:"seed"`
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
	// TickRate is the simulation frequency in Hz.
	TickRate        int           `json:"tick_rate" yaml:"tick_rate"`
	CommandBuffer   int           `json:"command_buffer" yaml:"command_buffer"`
	FrameBuffer     int           `json:"frame_buffer" yaml:"frame_buffer"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout"`
	PingInterval    time.Duration `json:"ping_interval" yaml:"ping_interval"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `json:"allowed_origins" yaml:"allowed_origins"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	// Format is "json" or "console".
	Format string `json:"format" yaml:"format"`
}

type PhysicsConfig struct {
	Gravity        float64 `json:"gravity" yaml:"gravity"`
	FixedTimeStep  float64 `json:"fixed_time_step" yaml:"fixed_time_step"`
	MaxSubSteps    int     `json:"max_sub_steps" yaml:"max_sub_steps"`
	Margin         float64 `json:"margin" yaml:"margin"`
	RollingDamping float64 `json:"rolling_damping" yaml:"rolling_damping"`
}

type FieldConfig struct {
	Width  float64 `json:"width" yaml:"width"`
	Length float64 `json:"length" yaml:"length"`
	MinZ   float64 `json:"min_z" yaml:"min_z"`
	MaxZ   float64 `json:"max_z" yaml:"max_z"`

	WallHeight      float64 `json:"wall_height" yaml:"wall_height"`
	WallThickness   float64 `json:"wall_thickness" yaml:"wall_thickness"`
	WallRestitution float64 `json:"wall_restitution" yaml:"wall_restitution"`
	WallFriction    float64 `json:"wall_friction" yaml:"wall_friction"`
}

type BallConfig struct {
	Radius      float64    `json:"radius" yaml:"radius"`
	Mass        float64    `json:"mass" yaml:"mass"`
	Friction    float64    `json:"friction" yaml:"friction"`
	Restitution float64    `json:"restitution" yaml:"restitution"`
	Start       [3]float64 `json:"start" yaml:"start"`

	KickoffHeight  float64 `json:"kickoff_height" yaml:"kickoff_height"`
	KickoffSpeed   float64 `json:"kickoff_speed" yaml:"kickoff_speed"`
	CeilingHeight  float64 `json:"ceiling_height" yaml:"ceiling_height"`
	MaxUpwardSpeed float64 `json:"max_upward_speed" yaml:"max_upward_speed"`

	StillSpeed float64       `json:"still_speed" yaml:"still_speed"`
	StillLimit time.Duration `json:"still_limit" yaml:"still_limit"`
}

type KickConfig struct {
	// Angle is the kick swing magnitude in radians.
	Angle        float64       `json:"angle" yaml:"angle"`
	OutDuration  time.Duration `json:"out_duration" yaml:"out_duration"`
	BackDuration time.Duration `json:"back_duration" yaml:"back_duration"`
	ReachX       float64       `json:"reach_x" yaml:"reach_x"`
	ReachZ       float64       `json:"reach_z" yaml:"reach_z"`
	Impulse      float64       `json:"impulse" yaml:"impulse"`
	OncePerKick  bool          `json:"once_per_kick" yaml:"once_per_kick"`
}

type GoalConfig struct {
	Width     float64 `json:"width" yaml:"width"`
	Overshoot float64 `json:"overshoot" yaml:"overshoot"`

	// Goal box geometry behind each end line.
	Depth       float64 `json:"depth" yaml:"depth"`
	Height      float64 `json:"height" yaml:"height"`
	BaseY       float64 `json:"base_y" yaml:"base_y"`
	MouthOffset float64 `json:"mouth_offset" yaml:"mouth_offset"`
	FloorOffset float64 `json:"floor_offset" yaml:"floor_offset"`

	Restitution float64       `json:"restitution" yaml:"restitution"`
	Friction    float64       `json:"friction" yaml:"friction"`
	Celebration time.Duration `json:"celebration" yaml:"celebration"`
	// TexturePattern is formatted with the score digit.
	TexturePattern string `json:"texture_pattern" yaml:"texture_pattern"`
}

type RodsConfig struct {
	Height       float64    `json:"height" yaml:"height"`
	Length       float64    `json:"length" yaml:"length"`
	FigureHeight float64    `json:"figure_height" yaml:"figure_height"`
	FigureHalf   [3]float64 `json:"figure_half" yaml:"figure_half"`
	LateralLimit float64    `json:"lateral_limit" yaml:"lateral_limit"`
	LateralStep  float64    `json:"lateral_step" yaml:"lateral_step"`
}

// Row is one rod of a team: Count figures spread around x=0 at depth Z.
type Row struct {
	Count int     `json:"count" yaml:"count"`
	Z     float64 `json:"z" yaml:"z"`
}

type TeamsConfig struct {
	A []Row `json:"a" yaml:"a"`
	B []Row `json:"b" yaml:"b"`
	// Spacing maps a row's figure count to the gap between neighbours.
	Spacing        map[int]float64 `json:"spacing" yaml:"spacing"`
	DefaultSpacing float64         `json:"default_spacing" yaml:"default_spacing"`
}

// SpacingFor returns the gap between figures on a row of count figures.
func (t TeamsConfig) SpacingFor(count int) float64 {
	if s, ok := t.Spacing[count]; ok {
		return s
	}
	return t.DefaultSpacing
}

// Default returns the stock table.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			TickRate:        60,
			CommandBuffer:   64,
			FrameBuffer:     16,
			WriteTimeout:    10 * time.Second,
			PingInterval:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Physics: PhysicsConfig{
			Gravity:        -7.8,
			FixedTimeStep:  1.0 / 60.0,
			MaxSubSteps:    10,
			Margin:         0.05,
			RollingDamping: 0.3,
		},
		Field: FieldConfig{
			Width:           20,
			Length:          30,
			MinZ:            -15,
			MaxZ:            15,
			WallHeight:      2,
			WallThickness:   0.5,
			WallRestitution: 1.3,
			WallFriction:    0.3,
		},
		Ball: BallConfig{
			Radius:         0.5,
			Mass:           1,
			Friction:       0.2,
			Restitution:    0.8,
			Start:          [3]float64{0, 3, 0},
			KickoffHeight:  0.6,
			KickoffSpeed:   5,
			CeilingHeight:  1.2,
			MaxUpwardSpeed: 0.5,
			StillSpeed:     0.05,
			StillLimit:     5 * time.Second,
		},
		Kick: KickConfig{
			Angle:        math.Pi / 2.5,
			OutDuration:  100 * time.Millisecond,
			BackDuration: 150 * time.Millisecond,
			ReachX:       0.7,
			ReachZ:       1.0,
			Impulse:      10,
		},
		Goal: GoalConfig{
			Width:          4,
			Overshoot:      0.4,
			Depth:          3,
			Height:         2.5,
			BaseY:          0.8,
			MouthOffset:    0.5,
			FloorOffset:    2,
			Restitution:    0.2,
			Friction:       1,
			Celebration:    3 * time.Second,
			TexturePattern: "numbers/%d.png",
		},
		Rods: RodsConfig{
			Height:       1.8,
			Length:       30,
			FigureHeight: 1,
			FigureHalf:   [3]float64{0.2, 1, 0.2},
			LateralLimit: 4,
			LateralStep:  0.2,
		},
		Teams: TeamsConfig{
			A:              []Row{{Count: 1, Z: -14}, {Count: 2, Z: -10}, {Count: 5, Z: -2}, {Count: 3, Z: 6}},
			B:              []Row{{Count: 3, Z: -6}, {Count: 5, Z: 2}, {Count: 2, Z: 10}, {Count: 1, Z: 14}},
			Spacing:        map[int]float64{1: 0, 2: 5, 3: 3, 5: 2},
			DefaultSpacing: 2,
		},
	}
}

// Load overlays the YAML file at path on top of Default.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", path, err)
	}
	return cfg, nil
}

// Decode overlays YAML from r on top of Default and validates the result.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Server.TickRate <= 0:
		return fmt.Errorf("%w: server.tick_rate must be positive", ErrInvalid)
	case c.Server.CommandBuffer <= 0 || c.Server.FrameBuffer <= 0:
		return fmt.Errorf("%w: server buffers must be positive", ErrInvalid)
	case c.Physics.FixedTimeStep <= 0:
		return fmt.Errorf("%w: physics.fixed_time_step must be positive", ErrInvalid)
	case c.Physics.MaxSubSteps <= 0:
		return fmt.Errorf("%w: physics.max_sub_steps must be positive", ErrInvalid)
	case c.Field.MinZ >= c.Field.MaxZ:
		return fmt.Errorf("%w: field.min_z must be below field.max_z", ErrInvalid)
	case c.Ball.Radius <= 0 || c.Ball.Mass <= 0:
		return fmt.Errorf("%w: ball radius and mass must be positive", ErrInvalid)
	case c.Ball.StillLimit <= 0 || c.Ball.StillSpeed <= 0:
		return fmt.Errorf("%w: ball stillness thresholds must be positive", ErrInvalid)
	case c.Kick.OutDuration <= 0 || c.Kick.BackDuration <= 0:
		return fmt.Errorf("%w: kick durations must be positive", ErrInvalid)
	case c.Goal.Width <= 0 || c.Goal.Width >= c.Field.Width:
		return fmt.Errorf("%w: goal.width must be inside the field width", ErrInvalid)
	case c.Rods.LateralLimit < 0 || c.Rods.LateralStep < 0:
		return fmt.Errorf("%w: rod lateral limits must not be negative", ErrInvalid)
	case c.Log.Format != "" && c.Log.Format != "json" && c.Log.Format != "console":
		return fmt.Errorf("%w: log.format must be json or console", ErrInvalid)
	case len(c.Teams.A) == 0 || len(c.Teams.B) == 0:
		return fmt.Errorf("%w: each team needs at least one rod", ErrInvalid)
	}
	for _, rows := range [][]Row{c.Teams.A, c.Teams.B} {
		for _, row := range rows {
			if row.Count <= 0 {
				return fmt.Errorf("%w: rod at z=%.2f has no figures", ErrInvalid, row.Z)
			}
			if row.Z <= c.Field.MinZ || row.Z >= c.Field.MaxZ {
				return fmt.Errorf("%w: rod at z=%.2f is outside the field", ErrInvalid, row.Z)
			}
		}
	}
	return nil
}

// TickInterval is the wall clock period of one simulation tick.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Server.TickRate)
}
