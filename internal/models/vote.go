package models

// Direction is the signed value of a vote.
type Direction int

const (
	Up   Direction = 1
	Down Direction = -1
)

// Valid reports whether d is +1 or -1.
func (d Direction) Valid() bool {
	return d == Up || d == Down
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return "none"
}
