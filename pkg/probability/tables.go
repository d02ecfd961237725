package probability

import (
	"errors"
	"fmt"
)

// Ratings are ordinal and highly nonlinear:
//
//	1 very low / very easy (anyone)
//	2 low / easy (some skills required)
//	3 middle
//	4 high (expert level)
//	5 very high (highly motivated criminal)
//	6 extremely high (government agency level)
//
// 0 means the rating is unset.
const (
	MinLevel = 0
	MaxLevel = 6
)

// Translation of ratings to probability-like weights.
var (
	//                     0    1    2    3    4    5    6
	Capabilities = [...]float64{0.0, 0.1, 0.3, 0.5, 0.8, 0.9, 0.99}
	Difficulties = [...]float64{0.0, 0.1, 0.3, 0.5, 0.8, 0.9, 0.99}
)

// ErrInvalidLevel is returned when a rating is outside [MinLevel, MaxLevel].
var ErrInvalidLevel = errors.New("invalid level")

// LevelError identifies which rating failed the range check.
type LevelError struct {
	Table string // "capability" or "difficulty"
	Level int
}

func (e *LevelError) Error() string {
	return fmt.Sprintf("%s level %d outside [%d, %d]: %v", e.Table, e.Level, MinLevel, MaxLevel, ErrInvalidLevel)
}

// Unwrap returns ErrInvalidLevel so errors.Is works on LevelError values.
func (e *LevelError) Unwrap() error {
	return ErrInvalidLevel
}

// ValidLevel reports whether level can be looked up.
func ValidLevel(level int) bool {
	return level >= MinLevel && level <= MaxLevel
}

// CapabilityWeight returns the weight for a capability rating.
func CapabilityWeight(level int) (float64, error) {
	if !ValidLevel(level) {
		return 0, &LevelError{Table: "capability", Level: level}
	}
	return Capabilities[level], nil
}

// DifficultyWeight returns the weight for a difficulty rating.
func DifficultyWeight(level int) (float64, error) {
	if !ValidLevel(level) {
		return 0, &LevelError{Table: "difficulty", Level: level}
	}
	return Difficulties[level], nil
}

// Local computes the intrinsic probability of a rated node:
// sign * frequency * (1 - capability weight * difficulty weight),
// where sign is -1 for measures and +1 for threats.
func Local(measure bool, frequency float64, capability, difficulty int) (float64, error) {
	cw, err := CapabilityWeight(capability)
	if err != nil {
		return 0, err
	}
	dw, err := DifficultyWeight(difficulty)
	if err != nil {
		return 0, err
	}

	p := frequency * (1.0 - cw*dw)
	if measure {
		return -p, nil
	}
	return p, nil
}
