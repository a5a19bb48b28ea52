package policies

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/grid-rl/trajgen/gridworld"
	"github.com/grid-rl/trajgen/types"
)

// BouncingBall goes forward until the agent position stops changing, then
// turns once in a random direction and goes forward again.
type BouncingBall struct {
	rand    *rand.Rand
	lastPos []float64
}

var _ types.Policy = &BouncingBall{}

func NewBouncingBall(seed uint64) *BouncingBall {
	return &BouncingBall{rand: rand.New(rand.NewSource(seed))}
}

func (b *BouncingBall) Observe(obs types.Observation) (int, map[string]float64, error) {
	pos, ok := obs["agent_pos"]
	if !ok {
		return 0, nil, fmt.Errorf("bouncing ball: observation missing agent_pos")
	}
	if reset, ok := obs["reset"]; ok && reset.Bool() {
		b.lastPos = nil
	}

	moved := b.lastPos == nil ||
		len(b.lastPos) != len(pos.Data) ||
		!equalFloats(b.lastPos, pos.Data)
	if moved {
		b.lastPos = append([]float64(nil), pos.Data...)
		return gridworld.ActionForward, nil, nil
	}

	// hit a wall: turn and forget the position so the next call goes forward
	b.lastPos = nil
	if b.rand.Intn(2) == 0 {
		return gridworld.ActionTurnLeft, nil, nil
	}
	return gridworld.ActionTurnRight, nil, nil
}

func equalFloats(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
