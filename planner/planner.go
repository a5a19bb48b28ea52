// Package planner finds action sequences from a continuous agent pose to a
// discrete goal cell, by breadth-first search over poses collapsed to a
// fixed-precision key. Edges have uniform cost, so BFS returns a plan with
// the minimum number of discrete actions reachable under the discretization.
package planner

import (
	"fmt"
	"math"

	"github.com/grid-rl/trajgen/gridworld"
)

// keyPrecision is the fixed rounding precision for visited-set keys.
const keyPrecision = 1e5

// MaxVisited caps the visited set. Exceeding it means the step/turn sizes do
// not tile the map and the search would run away; the planning call fails
// instead of degrading silently.
const MaxVisited = 100000

// Key is the rounded, hashable form of a pose. Two poses with the same key
// are the same search state.
type Key struct {
	X       float64
	Y       float64
	Heading float64
}

// PoseKey discretizes a pose to 5 decimal digits. It is idempotent: a pose
// already at the key's precision maps to itself.
func PoseKey(p gridworld.Pose) Key {
	round := func(v float64) float64 {
		return math.Round(v*keyPrecision) / keyPrecision
	}
	return Key{X: round(p.X), Y: round(p.Y), Heading: round(p.Heading)}
}

// Plan is the result of one planning call.
type Plan struct {
	// Actions to execute, in order. Empty when no path was found.
	Actions []int
	// Poses after each action, aligned with Actions.
	Poses []gridworld.Pose
	// Visited is the number of distinct search states expanded.
	Visited int
}

type node struct {
	pose   gridworld.Pose
	parent int // index into the queue, -1 for the start
	action int
}

// FindPath searches for an action sequence from start to the goal cell.
// A nil error with empty Actions means the goal is unreachable from the
// start's discretized state; the caller should pick a different goal.
func FindPath(m *gridworld.Map, start gridworld.Pose, goal gridworld.Cell, stepSize, turnSize float64) (Plan, error) {
	queue := []node{{pose: start, parent: -1, action: -1}}
	visited := map[Key]bool{PoseKey(start): true}

	goalIndex := -1
	for i := 0; i < len(queue); i++ {
		p := queue[i].pose
		if int(p.X) == goal.X && int(p.Y) == goal.Y {
			goalIndex = i
			break
		}
		for action := 0; action < gridworld.NumActions; action++ {
			next := gridworld.Apply(m, p, action, stepSize, turnSize)
			key := PoseKey(next)
			if visited[key] {
				continue
			}
			visited[key] = true
			// a blocked forward returns the same pose, which the key
			// dedup drops here
			queue = append(queue, node{pose: next, parent: i, action: action})
			if len(visited) >= MaxVisited {
				return Plan{}, fmt.Errorf("planner: visited %d states without reaching (%d, %d), runaway search", len(visited), goal.X, goal.Y)
			}
		}
	}

	plan := Plan{Visited: len(visited)}
	if goalIndex < 0 {
		return plan, nil
	}
	for i := goalIndex; queue[i].parent >= 0; i = queue[i].parent {
		plan.Actions = append(plan.Actions, queue[i].action)
		plan.Poses = append(plan.Poses, queue[i].pose)
	}
	reverseInts(plan.Actions)
	reversePoses(plan.Poses)
	return plan, nil
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reversePoses(s []gridworld.Pose) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
