package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, -7.8, cfg.Physics.Gravity)
	assert.Equal(t, 10, cfg.Physics.MaxSubSteps)
	assert.InDelta(t, math.Pi/2.5, cfg.Kick.Angle, 1e-12)
	assert.Equal(t, 5*time.Second, cfg.Ball.StillLimit)
	assert.Equal(t, [3]float64{0, 3, 0}, cfg.Ball.Start)
	assert.Equal(t, time.Second/60, cfg.TickInterval())
}

func TestDecodeOverlaysDefaults(t *testing.T) {
	src := `
server:
  addr: ":9999"
kick:
  out_duration: 80ms
  once_per_kick: true
teams:
  a:
    - {count: 2, z: -8}
`
	cfg, err := Decode(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 60, cfg.Server.TickRate, "untouched keys keep defaults")
	assert.Equal(t, 80*time.Millisecond, cfg.Kick.OutDuration)
	assert.Equal(t, 150*time.Millisecond, cfg.Kick.BackDuration)
	assert.True(t, cfg.Kick.OncePerKick)
	assert.Equal(t, []Row{{Count: 2, Z: -8}}, cfg.Teams.A)
	assert.Len(t, cfg.Teams.B, 4)
}

func TestDecodeEmptyDocument(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"unknown key", "bogus: 1\n", ErrDecode},
		{"bad duration", "ball:\n  still_limit: soon\n", ErrDecode},
		{"zero tick rate", "server:\n  tick_rate: 0\n", ErrInvalid},
		{"inverted field", "field:\n  min_z: 5\n  max_z: -5\n", ErrInvalid},
		{"empty rod", "teams:\n  b:\n    - {count: 0, z: 1}\n", ErrInvalid},
		{"rod outside field", "teams:\n  b:\n    - {count: 1, z: 16}\n", ErrInvalid},
		{"goal wider than field", "goal:\n  width: 25\n", ErrInvalid},
		{"unknown log format", "log:\n  format: xml\n", ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.src))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSpacingFor(t *testing.T) {
	teams := Default().Teams
	assert.Equal(t, 0.0, teams.SpacingFor(1))
	assert.Equal(t, 5.0, teams.SpacingFor(2))
	assert.Equal(t, 2.0, teams.SpacingFor(4), "unlisted counts use the default gap")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAddr:     "127.0.0.1:7000",
		EnvLogLevel: "warn",
		EnvSeed:     "42",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.EqualValues(t, 42, cfg.Seed)

	env[EnvSeed] = "-1"
	assert.ErrorIs(t, Default().ApplyEnv(lookup), ErrInvalid)
}

func TestFromEnvReadsDotEnvAndConfigPath(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "table.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("server:\n  tick_rate: 30\n"), 0o600))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte(EnvConfigPath+"="+yamlPath+"\n"+EnvSeed+"=7\n"), 0o600))

	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvSeed, "")
	require.NoError(t, os.Unsetenv(EnvConfigPath))
	require.NoError(t, os.Unsetenv(EnvSeed))

	cfg, err := FromEnv(envPath)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Server.TickRate)
	assert.EqualValues(t, 7, cfg.Seed)
}

func TestFromEnvWithoutDotEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	cfg, err := FromEnv(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.TickRate, cfg.Server.TickRate)
}
