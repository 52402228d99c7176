package proficiency

import (
	"errors"
	"fmt"
)

type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
)

var ErrInvalidLevel = errors.New("invalid proficiency level")

var ranks = map[Level]int{
	Beginner:     1,
	Intermediate: 2,
	Advanced:     3,
}

// Parse accepts only the three canonical lowercase names.
func Parse(s string) (Level, error) {
	l := Level(s)
	if _, ok := ranks[l]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return l, nil
}

func (l Level) Valid() bool {
	_, ok := ranks[l]
	return ok
}

func Rank(l Level) (int, error) {
	r, ok := ranks[l]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, string(l))
	}
	return r, nil
}

// Meets reports whether have is at or above need.
func Meets(have, need Level) (bool, error) {
	h, err := Rank(have)
	if err != nil {
		return false, err
	}
	n, err := Rank(need)
	if err != nil {
		return false, err
	}
	return h >= n, nil
}

// Max returns the higher of two valid levels.
func Max(a, b Level) (Level, error) {
	ok, err := Meets(a, b)
	if err != nil {
		return "", err
	}
	if ok {
		return a, nil
	}
	return b, nil
}
