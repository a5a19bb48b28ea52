package types

// Observation is the map of named fields an environment emits each step.
// The rollout collector annotates every observation with "action", "reward",
// "terminal" and "reset" before it reaches a policy or an episode record.
type Observation map[string]Tensor

// Clone copies the observation map and every tensor in it.
func (o Observation) Clone() Observation {
	out := make(Observation, len(o))
	for k, v := range o {
		out[k] = v.Clone()
	}
	return out
}

// Environment is the transition function the rollout engine drives.
type Environment interface {
	// Reset starts a new episode and returns the initial observation
	Reset() (Observation, error)
	// Step applies a discrete action and returns the next observation,
	// the reward and whether the episode is over
	Step(action int) (Observation, float64, bool, error)
	// ActionSize is the size of the discrete action space
	ActionSize() int
}

// Policy maps an observation to a discrete action, with optional
// per-step metrics for the side channels.
type Policy interface {
	Observe(Observation) (int, map[string]float64, error)
}

// Episode holds one finished episode with each field stacked across steps.
// The first row is the reset observation, so an episode of N steps has
// N+1 rows in every field.
type Episode map[string]Tensor

// EpisodeSteps is the number of actions taken, excluding the reset row.
func EpisodeSteps(e Episode) int {
	reset, ok := e["reset"]
	if !ok || len(reset.Shape) == 0 {
		return 0
	}
	return reset.Shape[0] - 1
}
