package engine

import (
	"fmt"
	"strings"
)

// Level is the discrete sea state derived from the composite.
type Level int

const (
	Calm Level = iota
	Choppy
	Rough
	Storm
)

var levelNames = [...]string{"Calm", "Choppy", "Rough", "Storm"}

func (l Level) String() string {
	if l < Calm || l > Storm {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// Classify maps a composite to its level. Each bucket includes its lower edge.
func Classify(composite float64) Level {
	switch {
	case composite < 0.25:
		return Calm
	case composite < 0.50:
		return Choppy
	case composite < 0.75:
		return Rough
	default:
		return Storm
	}
}

// ParseLevel accepts a level name in any case.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(name, s) {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

func (l Level) MarshalText() ([]byte, error) {
	if l < Calm || l > Storm {
		return nil, fmt.Errorf("invalid level %d", int(l))
	}
	return []byte(levelNames[l]), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
