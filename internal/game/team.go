package game

import (
	"fmt"
	"strings"
)

// Team identifies one side of the table. Team A defends the -z goal and
// attacks toward +z; team B the opposite.
type Team uint8

const (
	TeamA Team = iota
	TeamB
)

var Teams = [...]Team{TeamA, TeamB}

func (t Team) String() string {
	switch t {
	case TeamA:
		return "A"
	case TeamB:
		return "B"
	default:
		return fmt.Sprintf("Team(%d)", uint8(t))
	}
}

// Attack is the sign of the depth axis the team shoots toward.
func (t Team) Attack() float64 {
	if t == TeamB {
		return -1
	}
	return 1
}

// KickSign is the sign of the rod swing for a kick, away from the team's own
// goal. Team A swings negative about the rod axis, team B positive.
func (t Team) KickSign() float64 {
	return -t.Attack()
}

func (t Team) valid() bool {
	return t == TeamA || t == TeamB
}

// ParseTeam accepts "a"/"b" in either case.
func ParseTeam(s string) (Team, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a":
		return TeamA, nil
	case "b":
		return TeamB, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTeam, s)
	}
}

func (t Team) MarshalText() ([]byte, error) {
	if !t.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTeam, uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *Team) UnmarshalText(b []byte) error {
	v, err := ParseTeam(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
