package policies

import (
	"fmt"
	"log"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/grid-rl/trajgen/gridworld"
	"github.com/grid-rl/trajgen/planner"
	"github.com/grid-rl/trajgen/types"
)

// driftTolerance is how far the observed position may sit from the pose the
// previous plan step predicted before we declare the agent stuck.
const driftTolerance = 1e-3

// maxGoalResamples bounds how many goals one decision may try when planning
// keeps failing. The reference behavior retried forever; on a degenerate map
// that loops, so we fail loudly instead.
const maxGoalResamples = 64

// Navigation picks a random reachable spot on the map, walks there along a
// planned shortest action sequence, and occasionally takes a random action.
type Navigation struct {
	stepSize float64
	turnSize float64
	epsilon  float64
	rand     *rand.Rand

	goal         *gridworld.Cell
	expectedPose *gridworld.Pose
}

var _ types.Policy = &Navigation{}

// NewNavigation creates a navigation policy. stepSize and turnSize must
// match the environment's transition increments or every plan will drift.
func NewNavigation(stepSize, turnSize, epsilon float64, seed uint64) *Navigation {
	return &Navigation{
		stepSize: stepSize,
		turnSize: turnSize,
		epsilon:  epsilon,
		rand:     rand.New(rand.NewSource(seed)),
	}
}

func (n *Navigation) Observe(obs types.Observation) (int, map[string]float64, error) {
	pose, m, err := n.decode(obs)
	if err != nil {
		return 0, nil, err
	}

	if reset, ok := obs["reset"]; ok && reset.Bool() {
		n.goal = nil
		n.expectedPose = nil
	}
	if n.goal == nil {
		n.goal = n.sampleGoal(m)
	}

	if n.drifted(pose) {
		log.Printf("navigation: unexpected position (%.3f, %.3f), expected (%.3f, %.3f) - stuck? generating new goal",
			pose.X, pose.Y, n.expectedPose.X, n.expectedPose.Y)
		n.goal = n.sampleGoal(m)
		n.expectedPose = nil
	}

	for attempt := 0; attempt < maxGoalResamples; attempt++ {
		plan, err := planner.FindPath(m, pose, *n.goal, n.stepSize, n.turnSize)
		if err != nil {
			return 0, nil, err
		}
		if len(plan.Actions) == 0 {
			// goal unreachable from here (or we are standing on it)
			n.goal = n.sampleGoal(m)
			continue
		}
		if n.rand.Float64() < n.epsilon {
			// exploration step; the executed action is not the planned
			// one, so the drift baseline no longer applies
			n.expectedPose = nil
			i, ok := sampleuv.NewWeighted([]float64{1, 1, 1}, n.rand).Take()
			if !ok {
				return 0, nil, fmt.Errorf("navigation: sampling random action failed")
			}
			return i, nil, nil
		}
		n.expectedPose = &plan.Poses[0]
		return plan.Actions[0], nil, nil
	}
	return 0, nil, fmt.Errorf("navigation: no reachable goal after %d attempts", maxGoalResamples)
}

// drifted reports whether the observed position diverged from the pose the
// previous plan step predicted. Only position matters; slip leaves the
// heading intact.
func (n *Navigation) drifted(pose gridworld.Pose) bool {
	if n.expectedPose == nil {
		return false
	}
	return math.Abs(n.expectedPose.X-pose.X) > driftTolerance ||
		math.Abs(n.expectedPose.Y-pose.Y) > driftTolerance
}

// Goal returns the current navigation target, nil between episodes.
func (n *Navigation) Goal() *gridworld.Cell {
	if n.goal == nil {
		return nil
	}
	g := *n.goal
	return &g
}

// sampleGoal draws a uniform non-wall cell by rejection.
func (n *Navigation) sampleGoal(m *gridworld.Map) *gridworld.Cell {
	for {
		x := n.rand.Intn(m.Width())
		y := n.rand.Intn(m.Height())
		if m.At(x, y) != gridworld.CellWall {
			return &gridworld.Cell{X: x, Y: y}
		}
	}
}

// decode extracts the agent pose and the map grid from an observation.
func (n *Navigation) decode(obs types.Observation) (gridworld.Pose, *gridworld.Map, error) {
	pos, ok := obs["agent_pos"]
	if !ok || len(pos.Data) < 2 {
		return gridworld.Pose{}, nil, fmt.Errorf("navigation: observation missing agent_pos")
	}
	dir, ok := obs["agent_dir"]
	if !ok || len(dir.Data) < 2 {
		return gridworld.Pose{}, nil, fmt.Errorf("navigation: observation missing agent_dir")
	}
	grid, ok := obs["map_agent"]
	if !ok || len(grid.Shape) != 2 {
		return gridworld.Pose{}, nil, fmt.Errorf("navigation: observation missing map_agent grid")
	}

	cells := make([]int, len(grid.Data))
	for i, v := range grid.Data {
		cells[i] = int(v)
	}
	m, err := gridworld.NewMap(grid.Shape[0], grid.Shape[1], cells)
	if err != nil {
		return gridworld.Pose{}, nil, fmt.Errorf("navigation: bad map grid: %w", err)
	}

	heading := math.Atan2(dir.Data[1], dir.Data[0]) / math.Pi * 180
	pose := gridworld.Pose{
		X:       pos.Data[0],
		Y:       pos.Data[1],
		Heading: gridworld.NormalizeHeading(heading),
	}
	return pose, m, nil
}
