package policies

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/grid-rl/trajgen/gridworld"
	"github.com/grid-rl/trajgen/types"
)

// Wander drifts through the maze by looking at the three cells around the
// agent: mostly forward, turning away from walls, with occasional random
// turns at doors and open cells.
type Wander struct {
	rand *rand.Rand
}

var _ types.Policy = &Wander{}

func NewWander(seed uint64) *Wander {
	return &Wander{rand: rand.New(rand.NewSource(seed))}
}

func (w *Wander) Observe(obs types.Observation) (int, map[string]float64, error) {
	front, left, right, err := surroundings(obs)
	if err != nil {
		return 0, nil, err
	}

	free := func(c int) bool {
		return c == gridworld.CellEmpty || c == gridworld.CellGoal
	}

	// doors invite a turn more often than open cells
	if left == gridworld.CellDoor && w.rand.Float64() < 0.50 {
		return gridworld.ActionTurnLeft, nil, nil
	}
	if right == gridworld.CellDoor && w.rand.Float64() < 0.50 {
		return gridworld.ActionTurnRight, nil, nil
	}
	if free(left) && w.rand.Float64() < 0.10 {
		return gridworld.ActionTurnLeft, nil, nil
	}
	if free(right) && w.rand.Float64() < 0.10 {
		return gridworld.ActionTurnRight, nil, nil
	}

	if free(front) || front == gridworld.CellDoor {
		return gridworld.ActionForward, nil, nil
	}

	// forward blocked: turn away from the walled side
	if left == gridworld.CellWall && right != gridworld.CellWall {
		return gridworld.ActionTurnRight, nil, nil
	}
	if right == gridworld.CellWall && left != gridworld.CellWall {
		return gridworld.ActionTurnLeft, nil, nil
	}
	if w.rand.Float64() < 0.50 {
		return gridworld.ActionTurnLeft, nil, nil
	}
	return gridworld.ActionTurnRight, nil, nil
}

// surroundings reads the cell codes ahead of, left of and right of the agent
// from the marked map.
func surroundings(obs types.Observation) (front, left, right int, err error) {
	pos, ok := obs["agent_pos"]
	if !ok {
		return 0, 0, 0, fmt.Errorf("wander: observation missing agent_pos")
	}
	dir, ok := obs["agent_dir"]
	if !ok {
		return 0, 0, 0, fmt.Errorf("wander: observation missing agent_dir")
	}
	grid, ok := obs["map_agent"]
	if !ok || len(grid.Shape) != 2 {
		return 0, 0, 0, fmt.Errorf("wander: observation missing map_agent grid")
	}

	w, h := grid.Shape[0], grid.Shape[1]
	at := func(x, y int) int {
		if x < 0 || y < 0 || x >= w || y >= h {
			return gridworld.CellWall
		}
		return int(grid.Data[x*h+y])
	}

	ax, ay := int(pos.Data[0]), int(pos.Data[1])
	// snap the heading to the dominant axis
	dx, dy := dir.Data[0], dir.Data[1]
	fx, fy := 0, 0
	if math.Abs(dx) >= math.Abs(dy) {
		fx = sign(dx)
	} else {
		fy = sign(dy)
	}
	front = at(ax+fx, ay+fy)
	left = at(ax+fy, ay-fx)
	right = at(ax-fy, ay+fx)
	return front, left, right, nil
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}
