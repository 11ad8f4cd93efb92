package game

import (
	"fmt"

	"github.com/zeusync/futbolin/internal/core/observability/log"
)

// Keyboard keys as reported by the browser's KeyboardEvent.key.
const (
	KeyPrevRodA = "a"
	KeyNextRodA = "d"
	KeyKickA    = " "
	KeyForwardA = "w"
	KeyBackA    = "s"
	KeyPrevRodB = "ArrowLeft"
	KeyNextRodB = "ArrowRight"
	KeyKickB    = "Enter"
	KeyForwardB = "ArrowUp"
	KeyBackB    = "ArrowDown"
)

// CommandKind names an input command.
type CommandKind string

const (
	CmdKeyDown   CommandKind = "key_down"
	CmdKeyUp     CommandKind = "key_up"
	CmdSelect    CommandKind = "select"
	CmdKick      CommandKind = "kick"
	CmdResetBall CommandKind = "reset"
)

// Command is one input event for the match. Key is used by key events; Team
// and Rod by select and kick.
type Command struct {
	Kind CommandKind `json:"type"`
	Key  string      `json:"key,omitempty"`
	Team Team        `json:"team,omitempty"`
	Rod  int         `json:"rod,omitempty"`
}

// Controls keeps the per-team rod selection and held keys.
type Controls struct {
	selected [2]int
	rodCount [2]int
	held     map[string]bool
}

func newControls(rodCount [2]int) *Controls {
	return &Controls{rodCount: rodCount, held: make(map[string]bool)}
}

func (c *Controls) Selected(team Team) int {
	return c.selected[team]
}

// Select clamps index to the team's rods.
func (c *Controls) Select(team Team, index int) int {
	c.selected[team] = clampIndex(index, c.rodCount[team])
	return c.selected[team]
}

func (c *Controls) Held(key string) bool { return c.held[key] }

func clampIndex(i, n int) int {
	if i < 0 || n == 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Apply executes one command against the match. Kicks on a busy rod are
// dropped silently.
func (m *Match) Apply(cmd Command) error {
	switch cmd.Kind {
	case CmdKeyDown:
		m.keyDown(cmd.Key)
		return nil

	case CmdKeyUp:
		m.controls.held[cmd.Key] = false
		return nil

	case CmdSelect:
		if !cmd.Team.valid() {
			return fmt.Errorf("%w: %d", ErrUnknownTeam, uint8(cmd.Team))
		}
		m.controls.Select(cmd.Team, cmd.Rod)
		return nil

	case CmdKick:
		if !cmd.Team.valid() {
			return fmt.Errorf("%w: %d", ErrUnknownTeam, uint8(cmd.Team))
		}
		m.kick(cmd.Team, clampIndex(cmd.Rod, len(m.rods[cmd.Team])))
		return nil

	case CmdResetBall:
		m.ball.Reset(ResetManual)
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)
	}
}

func (m *Match) keyDown(key string) {
	m.controls.held[key] = true

	c := m.controls
	switch key {
	case KeyPrevRodA:
		c.Select(TeamA, c.selected[TeamA]-1)
	case KeyNextRodA:
		c.Select(TeamA, c.selected[TeamA]+1)
	case KeyPrevRodB:
		c.Select(TeamB, c.selected[TeamB]-1)
	case KeyNextRodB:
		c.Select(TeamB, c.selected[TeamB]+1)
	case KeyKickA:
		m.kick(TeamA, c.selected[TeamA])
	case KeyKickB:
		m.kick(TeamB, c.selected[TeamB])
	}
}

func (m *Match) kick(team Team, index int) {
	if err := m.kicks.StartKick(team, index); err != nil {
		m.logger.Debug("kick ignored",
			log.String("team", team.String()),
			log.Int("rod", index),
			log.Error(err),
		)
	}
}

// slideSelected moves the selected rods while their keys are held, then
// clamps every rod to the lateral limit.
func (m *Match) slideSelected() {
	step := m.cfg.Rods.LateralStep
	limit := m.cfg.Rods.LateralLimit
	c := m.controls

	if rods := m.rods[TeamA]; len(rods) > 0 {
		r := rods[c.selected[TeamA]]
		if c.held[KeyBackA] {
			r.Slide(-step, limit)
		}
		if c.held[KeyForwardA] {
			r.Slide(step, limit)
		}
	}
	if rods := m.rods[TeamB]; len(rods) > 0 {
		r := rods[c.selected[TeamB]]
		if c.held[KeyBackB] {
			r.Slide(-step, limit)
		}
		if c.held[KeyForwardB] {
			r.Slide(step, limit)
		}
	}

	for _, team := range Teams {
		for _, r := range m.rods[team] {
			r.Clamp(limit)
		}
	}
}
