package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"off":     LevelSilent,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNopLoggerAcceptsEveryFieldType(t *testing.T) {
	l := NewNop()
	scoped := l.With(String("component", "test"))
	scoped.Info("fields",
		Bool("b", true),
		Float64("f", 1.5),
		Int("i", 3),
		Int64("i64", 4),
		Uint64("u64", 5),
		Vec3("pos", [3]float64{0, 3, 0}),
		Error(errors.New("boom")),
		Any("any", struct{}{}),
	)
}

func TestSetLevelRoundTrip(t *testing.T) {
	l := NewNop()
	l.SetLevel(LevelWarn)
	assert.Equal(t, LevelWarn, l.GetLevel())
	assert.False(t, l.checkLevel(LevelInfo))
	assert.True(t, l.checkLevel(LevelError))
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelInfo, WithOutput(&buf), WithoutSampling())
	l.With(String("component", "goal")).Info("Goal scored", Int("score_a", 1))
	l.Debug("hidden")
	require.NoError(t, l.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Goal scored", entry["msg"])
	assert.Equal(t, "goal", entry["component"])
	assert.EqualValues(t, 1, entry["score_a"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelDebug, WithFormat("console"), WithOutput(&buf), WithoutSampling())
	l.Debug("Kickoff", Vec3("velocity", [3]float64{0, 0, 5}))
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "0.000,0.000,5.000")
}

func TestChildSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelInfo, WithOutput(&buf), WithoutSampling())
	child := l.With(String("component", "ball"))
	l.SetLevel(LevelError)
	child.Warn("suppressed")
	assert.Empty(t, buf.String())
	assert.Equal(t, LevelError, child.GetLevel())
}
