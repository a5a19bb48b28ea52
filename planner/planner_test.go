package planner

import (
	"testing"

	"github.com/grid-rl/trajgen/gridworld"
)

func TestFindPathOpenMap(t *testing.T) {
	m := gridworld.NewOpenMap(5, 5)
	start := gridworld.Pose{X: 1.5, Y: 1.5, Heading: 0}
	goal := gridworld.Cell{X: 3, Y: 3}

	plan, err := FindPath(m, start, goal, 1.0, 90.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Actions) == 0 {
		t.Fatalf("expected a path to (%d, %d)", goal.X, goal.Y)
	}
	// two forwards, one turn, two forwards is the minimum here
	if len(plan.Actions) != 5 {
		t.Errorf("expected 5 actions, got %d (%v)", len(plan.Actions), plan.Actions)
	}

	// replaying the actions must land in the goal cell
	pose := start
	for _, a := range plan.Actions {
		pose = gridworld.Apply(m, pose, a, 1.0, 90.0)
	}
	if int(pose.X) != goal.X || int(pose.Y) != goal.Y {
		t.Errorf("replay ended at (%.2f, %.2f), want cell (%d, %d)", pose.X, pose.Y, goal.X, goal.Y)
	}
	if len(plan.Poses) != len(plan.Actions) {
		t.Errorf("poses and actions misaligned: %d != %d", len(plan.Poses), len(plan.Actions))
	}
	last := plan.Poses[len(plan.Poses)-1]
	if last != pose {
		t.Errorf("last planned pose %+v does not match replay %+v", last, pose)
	}
}

func TestFindPathGoalAtStart(t *testing.T) {
	m := gridworld.NewOpenMap(5, 5)
	start := gridworld.Pose{X: 2.5, Y: 2.5, Heading: 90}

	plan, err := FindPath(m, start, gridworld.Cell{X: 2, Y: 2}, 1.0, 90.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Actions) != 0 {
		t.Errorf("expected empty plan when already at goal, got %v", plan.Actions)
	}
}

func TestFindPathSurroundedByWalls(t *testing.T) {
	m, err := gridworld.ParseMap([]string{
		"###",
		"#.#",
		"###",
	})
	if err != nil {
		t.Fatalf("parse map: %v", err)
	}
	start := gridworld.Pose{X: 1.5, Y: 1.5, Heading: 0}

	// unreachable goal: forward is a no-op in every direction, and the
	// search must still terminate through key deduplication
	plan, err := FindPath(m, start, gridworld.Cell{X: 0, Y: 0}, 1.0, 90.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Actions) != 0 {
		t.Errorf("expected no path, got %v", plan.Actions)
	}
	if plan.Visited == 0 || plan.Visited >= MaxVisited {
		t.Errorf("visited count %d out of range", plan.Visited)
	}
}

func TestFindPathUnreachableRegion(t *testing.T) {
	m, err := gridworld.ParseMap([]string{
		"#####",
		"#.#.#",
		"#.#.#",
		"#####",
	})
	if err != nil {
		t.Fatalf("parse map: %v", err)
	}
	start := gridworld.Pose{X: 1.5, Y: 1.5, Heading: 0}

	plan, err := FindPath(m, start, gridworld.Cell{X: 3, Y: 2}, 1.0, 90.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Actions) != 0 {
		t.Errorf("expected no path across the wall, got %v", plan.Actions)
	}
}

func TestPoseKeyIdempotent(t *testing.T) {
	p := gridworld.Pose{X: 1.234567, Y: -2.000004, Heading: 44.999999}
	key := PoseKey(p)
	again := PoseKey(gridworld.Pose{X: key.X, Y: key.Y, Heading: key.Heading})
	if key != again {
		t.Errorf("key not idempotent: %+v != %+v", key, again)
	}
}

func TestPoseKeyCollapsesNearbyPoses(t *testing.T) {
	a := PoseKey(gridworld.Pose{X: 1.0000001, Y: 2, Heading: 90})
	b := PoseKey(gridworld.Pose{X: 0.9999999, Y: 2, Heading: 90})
	if a != b {
		t.Errorf("expected equal keys, got %+v and %+v", a, b)
	}
}
