// Package level holds the bounded spell level selector.
package level

import "strconv"

const (
	Min = 0
	Max = 8

	// Positions is the number of selectable stops.
	Positions = Max - Min + 1
)

// Level is a spell level in [Min, Max].
type Level int

// Clamp converts n to a Level, pinning it to the selector range.
func Clamp(n int) Level {
	switch {
	case n < Min:
		return Min
	case n > Max:
		return Max
	}
	return Level(n)
}

// String returns the decimal form sent to the compute service.
func (l Level) String() string { return strconv.Itoa(int(l)) }

// Selector is a step-1 slider over [Min, Max]. The zero value selects Min.
type Selector struct {
	value Level
}

// Value returns the current selection.
func (s *Selector) Value() Level { return s.value }

// Set replaces the selection, clamping out-of-range values.
func (s *Selector) Set(n int) Level {
	s.value = Clamp(n)
	return s.value
}

// Step moves the selection by delta stops.
func (s *Selector) Step(delta int) Level {
	return s.Set(int(s.value) + delta)
}
