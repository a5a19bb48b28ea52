package policies

import (
	"golang.org/x/exp/rand"

	"github.com/grid-rl/trajgen/types"
)

// Random picks uniformly among the environment's actions.
type Random struct {
	actionSize int
	rand       *rand.Rand
}

var _ types.Policy = &Random{}

func NewRandom(actionSize int, seed uint64) *Random {
	return &Random{
		actionSize: actionSize,
		rand:       rand.New(rand.NewSource(seed)),
	}
}

func (r *Random) Observe(obs types.Observation) (int, map[string]float64, error) {
	return r.rand.Intn(r.actionSize), nil, nil
}
