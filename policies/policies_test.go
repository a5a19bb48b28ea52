package policies

import (
	"math"
	"testing"

	"github.com/grid-rl/trajgen/gridworld"
	"github.com/grid-rl/trajgen/types"
)

// mazeObs builds the observation the maze environment would emit for the
// given pose on the given map.
func mazeObs(m *gridworld.Map, pose gridworld.Pose, reset bool) types.Observation {
	w, h := m.Width(), m.Height()
	grid := types.Tensor{Shape: []int{w, h}, Data: make([]float64, w*h)}
	for i, c := range m.Cells() {
		grid.Data[i] = float64(c)
	}
	ax, ay := int(pose.X), int(pose.Y)
	grid.Data[ax*h+ay] = gridworld.CellAgent

	rad := pose.Heading / 180 * math.Pi
	return types.Observation{
		"map_agent": grid,
		"agent_pos": types.Vector([]float64{pose.X, pose.Y}),
		"agent_dir": types.Vector([]float64{math.Cos(rad), math.Sin(rad)}),
		"reset":     types.FromBool(reset),
	}
}

func TestNavigationFollowsPlan(t *testing.T) {
	m := gridworld.NewOpenMap(6, 6)
	nav := NewNavigation(1.0, 90.0, 0, 1)

	pose := gridworld.Pose{X: 1.5, Y: 1.5, Heading: 0}
	nav.goal = &gridworld.Cell{X: 3, Y: 1} // straight ahead

	action, _, err := nav.Observe(mazeObs(m, pose, false))
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if action != gridworld.ActionForward {
		t.Errorf("action = %d, want forward", action)
	}
	if nav.expectedPose == nil {
		t.Fatalf("expected pose not recorded")
	}
	if math.Abs(nav.expectedPose.X-2.5) > 1e-9 || math.Abs(nav.expectedPose.Y-1.5) > 1e-9 {
		t.Errorf("expected pose %+v, want (2.5, 1.5)", nav.expectedPose)
	}
}

func TestNavigationDriftDetection(t *testing.T) {
	nav := NewNavigation(1.0, 90.0, 0, 1)
	expected := gridworld.Pose{X: 2.5, Y: 1.5}
	nav.expectedPose = &expected

	if nav.drifted(gridworld.Pose{X: 2.5, Y: 1.5, Heading: 90}) {
		t.Errorf("matching position flagged as drift")
	}
	if nav.drifted(gridworld.Pose{X: 2.5 + 5e-4, Y: 1.5, Heading: 0}) {
		t.Errorf("position within tolerance flagged as drift")
	}
	if !nav.drifted(gridworld.Pose{X: 1.5, Y: 1.5, Heading: 0}) {
		t.Errorf("stuck position not flagged as drift")
	}
}

func TestNavigationDriftDiscardsPlan(t *testing.T) {
	m := gridworld.NewOpenMap(6, 6)
	nav := NewNavigation(1.0, 90.0, 0, 1)

	nav.goal = &gridworld.Cell{X: 3, Y: 1}
	stale := gridworld.Pose{X: 4.5, Y: 4.5}
	nav.expectedPose = &stale

	// observed pose does not match the stale expectation
	pose := gridworld.Pose{X: 1.5, Y: 1.5, Heading: 0}
	action, _, err := nav.Observe(mazeObs(m, pose, false))
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if action < 0 || action >= gridworld.NumActions {
		t.Errorf("invalid action %d after drift", action)
	}
	// the stale expectation must be gone, replaced by the new plan's pose
	if nav.expectedPose != nil && *nav.expectedPose == stale {
		t.Errorf("stale expected pose survived drift")
	}
}

func TestNavigationResetClearsState(t *testing.T) {
	m := gridworld.NewOpenMap(6, 6)
	nav := NewNavigation(1.0, 90.0, 0, 1)

	old := gridworld.Cell{X: 0, Y: 0} // a wall cell, never sampled
	nav.goal = &old
	stale := gridworld.Pose{X: 4.5, Y: 4.5}
	nav.expectedPose = &stale

	pose := gridworld.Pose{X: 2.5, Y: 2.5, Heading: 90}
	if _, _, err := nav.Observe(mazeObs(m, pose, true)); err != nil {
		t.Fatalf("observe: %v", err)
	}
	goal := nav.Goal()
	if goal == nil || *goal == old {
		t.Errorf("reset observation did not resample the goal, got %+v", goal)
	}
}

func TestNavigationMissingFields(t *testing.T) {
	nav := NewNavigation(1.0, 90.0, 0, 1)
	if _, _, err := nav.Observe(types.Observation{}); err == nil {
		t.Errorf("expected error for observation without pose and map")
	}
}

func TestNavigationReachesGoalCell(t *testing.T) {
	m := gridworld.NewOpenMap(6, 6)
	env := gridworld.NewMazeEnv(gridworld.MazeEnvConfig{
		Map: m, StepSize: 1.0, TurnSize: 90.0, MaxSteps: 200, Seed: 5,
	})
	nav := NewNavigation(1.0, 90.0, 0, 5)

	obs, err := env.Reset()
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	obs["reset"] = types.FromBool(true)

	reached := false
	for i := 0; i < 200; i++ {
		action, _, err := nav.Observe(obs)
		if err != nil {
			t.Fatalf("observe: %v", err)
		}
		obs, _, _, err = env.Step(action)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		obs["reset"] = types.FromBool(false)
		pose := env.Pose()
		goal := nav.Goal()
		if goal != nil && int(pose.X) == goal.X && int(pose.Y) == goal.Y {
			reached = true
			break
		}
	}
	if !reached {
		t.Errorf("navigation never reached its goal cell in 200 steps")
	}
}

func TestBouncingBallTurnsWhenStuck(t *testing.T) {
	b := NewBouncingBall(1)
	obs := types.Observation{
		"agent_pos": types.Vector([]float64{1.5, 1.5}),
	}

	action, _, err := b.Observe(obs)
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if action != gridworld.ActionForward {
		t.Errorf("first action = %d, want forward", action)
	}

	// same position again: the ball hit a wall and must turn
	action, _, err = b.Observe(obs)
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if action != gridworld.ActionTurnLeft && action != gridworld.ActionTurnRight {
		t.Errorf("stuck action = %d, want a turn", action)
	}

	// after a turn it tries forward again
	action, _, err = b.Observe(obs)
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if action != gridworld.ActionForward {
		t.Errorf("action after turn = %d, want forward", action)
	}
}

func TestWanderPrefersForward(t *testing.T) {
	m, err := gridworld.ParseMap([]string{
		"#####",
		"#...#",
		"#####",
	})
	if err != nil {
		t.Fatalf("parse map: %v", err)
	}
	w := NewWander(1)

	// facing east down an open corridor with walls left and right:
	// the only stochastic branch is the turn-at-open-cell check, which
	// never fires because both sides are walls
	obs := mazeObs(m, gridworld.Pose{X: 1.5, Y: 1.5, Heading: 0}, false)
	action, _, err := w.Observe(obs)
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if action != gridworld.ActionForward {
		t.Errorf("action = %d, want forward in open corridor", action)
	}
}

func TestWanderTurnsAtWall(t *testing.T) {
	m, err := gridworld.ParseMap([]string{
		"#####",
		"#...#",
		"#.###",
		"#####",
	})
	if err != nil {
		t.Fatalf("parse map: %v", err)
	}
	w := NewWander(1)

	// facing the east wall at (3, 2) does not exist; stand at (1, 2)
	// facing east into a wall with the open cell above
	for i := 0; i < 10; i++ {
		obs := mazeObs(m, gridworld.Pose{X: 1.5, Y: 2.5, Heading: 0}, false)
		action, _, err := w.Observe(obs)
		if err != nil {
			t.Fatalf("observe: %v", err)
		}
		if action == gridworld.ActionForward {
			t.Fatalf("wander walked into a wall")
		}
	}
}

func TestRandomStaysInRange(t *testing.T) {
	r := NewRandom(3, 42)
	for i := 0; i < 100; i++ {
		action, _, err := r.Observe(nil)
		if err != nil {
			t.Fatalf("observe: %v", err)
		}
		if action < 0 || action >= 3 {
			t.Fatalf("action %d out of range", action)
		}
	}
}
