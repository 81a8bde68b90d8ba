package galaxy

import "fmt"

type BodyType int

const (
	TypePlanet BodyType = 1
	TypeDebris BodyType = 2
	TypeMoon   BodyType = 3
)

// DeepSpacePosition is the system slot with no body. Fleets holding there
// cannot be located by a sensor phalanx on a planet or moon.
const DeepSpacePosition = 16

func (t BodyType) String() string {
	switch t {
	case TypePlanet:
		return "planet"
	case TypeDebris:
		return "debris"
	case TypeMoon:
		return "moon"
	default:
		return "unknown"
	}
}

type Coordinate struct {
	Galaxy   int      `json:"galaxy"`
	System   int      `json:"system"`
	Position int      `json:"position"`
	Type     BodyType `json:"type"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("[%d:%d:%d:%s]", c.Galaxy, c.System, c.Position, c.Type)
}

func (c Coordinate) IsDeepSpace() bool {
	return c.Position == DeepSpacePosition
}

// WithType returns the same slot viewed as a different body type, e.g. the
// debris field hovering over a planet position.
func (c Coordinate) WithType(t BodyType) Coordinate {
	c.Type = t
	return c
}

// Less defines a total order over coordinates so sets of bodies can be
// deduplicated and iterated deterministically across cycles.
func (c Coordinate) Less(o Coordinate) bool {
	if c.Galaxy != o.Galaxy {
		return c.Galaxy < o.Galaxy
	}
	if c.System != o.System {
		return c.System < o.System
	}
	if c.Position != o.Position {
		return c.Position < o.Position
	}
	return c.Type < o.Type
}
