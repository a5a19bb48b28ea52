package gridworld

import "math"

// Discrete maze actions shared by the planner, the policies and the
// environment.
const (
	ActionTurnLeft  = 0
	ActionTurnRight = 1
	ActionForward   = 2

	NumActions = 3
)

// CollisionRadius is the offset of the four corner probes checked before a
// forward move is accepted.
const CollisionRadius = 0.2

// Pose is the agent's continuous position and heading. Heading is in
// degrees, normalized into (-180, 180].
type Pose struct {
	X       float64
	Y       float64
	Heading float64
}

// NormalizeHeading wraps a heading in degrees into (-180, 180].
func NormalizeHeading(d float64) float64 {
	for d <= -180 {
		d += 360
	}
	for d > 180 {
		d -= 360
	}
	return d
}

// Cell is a discrete grid cell.
type Cell struct {
	X int
	Y int
}

// CellOf truncates a pose to the cell containing it.
func CellOf(p Pose) Cell {
	return Cell{X: int(p.X), Y: int(p.Y)}
}

// Apply returns the pose after one action. Turns rotate the heading by
// turnSize; forward advances by stepSize along the heading unless any of the
// four corner probes around the destination is out of bounds or on a wall,
// in which case the pose is unchanged.
func Apply(m *Map, p Pose, action int, stepSize, turnSize float64) Pose {
	switch action {
	case ActionTurnLeft:
		return Pose{X: p.X, Y: p.Y, Heading: NormalizeHeading(p.Heading - turnSize)}
	case ActionTurnRight:
		return Pose{X: p.X, Y: p.Y, Heading: NormalizeHeading(p.Heading + turnSize)}
	case ActionForward:
		rad := p.Heading / 180 * math.Pi
		x1 := p.X + stepSize*math.Cos(rad)
		y1 := p.Y + stepSize*math.Sin(rad)
		corners := [4][2]float64{
			{x1 - CollisionRadius, y1 - CollisionRadius},
			{x1 + CollisionRadius, y1 - CollisionRadius},
			{x1 - CollisionRadius, y1 + CollisionRadius},
			{x1 + CollisionRadius, y1 + CollisionRadius},
		}
		for _, c := range corners {
			if !m.InBounds(c[0], c[1]) || m.At(int(c[0]), int(c[1])) == CellWall {
				return p // blocked, forward is a no-op
			}
		}
		return Pose{X: x1, Y: y1, Heading: p.Heading}
	}
	return p
}
