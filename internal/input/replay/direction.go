package replay

import "strings"

// Direction is the vertical wheel direction.
type Direction int8

const (
	// Up scrolls toward the top of the content.
	Up Direction = 1
	// Down scrolls toward the bottom of the content.
	Down Direction = -1
)

// String returns "Up" or "Down".
func (d Direction) String() string {
	if d == Down {
		return "Down"
	}
	return "Up"
}

// ParseDirection returns Down for "Down" (case-insensitive) and Up for
// anything else.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), "down") {
		return Down
	}
	return Up
}
