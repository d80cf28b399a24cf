package world

import "fmt"

// Direction identifies one of the six cube faces.
type Direction int

const (
	Up Direction = iota
	Down
	North
	South
	East
	West
)

// DirectionCount is the number of cardinal directions.
const DirectionCount = 6

// Directions lists every direction in bucket order.
var Directions = [DirectionCount]Direction{Up, Down, North, South, East, West}

var directionNames = [DirectionCount]string{"up", "down", "north", "south", "east", "west"}

// directionOffsets holds the neighbor offset for each face.
// North is -Z and East is +X.
var directionOffsets = [DirectionCount][3]int{
	Up:    {0, 1, 0},
	Down:  {0, -1, 0},
	North: {0, 0, -1},
	South: {0, 0, 1},
	East:  {1, 0, 0},
	West:  {-1, 0, 0},
}

func (d Direction) String() string {
	if d < 0 || int(d) >= DirectionCount {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// Offset returns the (dx, dy, dz) step towards the neighbor behind this face.
func (d Direction) Offset() (int, int, int) {
	o := directionOffsets[d]
	return o[0], o[1], o[2]
}

// ParseDirection maps a model-file face name ("up", "north", ...) to a Direction.
func ParseDirection(name string) (Direction, bool) {
	for i, n := range directionNames {
		if n == name {
			return Direction(i), true
		}
	}
	return 0, false
}

// Rotate turns a face by xSteps quarter turns around the X axis followed by
// ySteps quarter turns around the Y axis, the way blockstate variants rotate
// their models.
func (d Direction) Rotate(xSteps, ySteps int) Direction {
	for i := 0; i < mod(xSteps, 4); i++ {
		switch d {
		case Up:
			d = North
		case North:
			d = Down
		case Down:
			d = South
		case South:
			d = Up
		}
	}
	for i := 0; i < mod(ySteps, 4); i++ {
		switch d {
		case North:
			d = East
		case East:
			d = South
		case South:
			d = West
		case West:
			d = North
		}
	}
	return d
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
