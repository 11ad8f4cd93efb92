package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTeam(t *testing.T) {
	for in, want := range map[string]Team{"a": TeamA, "A": TeamA, " b ": TeamB} {
		got, err := ParseTeam(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseTeam("c")
	assert.ErrorIs(t, err, ErrUnknownTeam)
}

func TestTeamDirections(t *testing.T) {
	assert.Equal(t, 1.0, TeamA.Attack())
	assert.Equal(t, -1.0, TeamB.Attack())
	assert.Equal(t, -1.0, TeamA.KickSign())
	assert.Equal(t, 1.0, TeamB.KickSign())
}

func TestTeamText(t *testing.T) {
	b, err := json.Marshal(map[string]Team{"team": TeamB})
	require.NoError(t, err)
	assert.JSONEq(t, `{"team":"B"}`, string(b))

	var got struct{ Team Team }
	require.NoError(t, json.Unmarshal([]byte(`{"Team":"a"}`), &got))
	assert.Equal(t, TeamA, got.Team)

	_, err = json.Marshal(Team(7))
	assert.ErrorIs(t, err, ErrUnknownTeam)
}
