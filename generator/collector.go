package generator

import (
	"fmt"

	"github.com/grid-rl/trajgen/types"
)

// Collector composes the per-step bookkeeping and the episode recording
// around an environment: every observation leaving it carries the "action",
// "reward", "terminal" and "reset" fields, and the recorded rows stack into
// an Episode once the episode ends.
type Collector struct {
	env      types.Environment
	maxSteps int
	epstep   int
	records  []types.Observation
}

// NewCollector wraps env. maxSteps distinguishes genuine terminal states
// from step-cap endings; 0 disables the distinction.
func NewCollector(env types.Environment, maxSteps int) *Collector {
	return &Collector{env: env, maxSteps: maxSteps}
}

func (c *Collector) ActionSize() int { return c.env.ActionSize() }

// Reset starts a new episode. The reset observation is recorded as step 0
// with a zero action and no reward.
func (c *Collector) Reset() (types.Observation, error) {
	obs, err := c.env.Reset()
	if err != nil {
		return nil, err
	}
	c.epstep = 0
	obs = annotate(obs, types.OneHot(-1, c.env.ActionSize()), 0, false, true)
	c.records = c.records[:0]
	c.records = collect(c.records, obs)
	return obs, nil
}

// Step applies an action and records the annotated result.
func (c *Collector) Step(action int) (types.Observation, float64, bool, error) {
	if action < 0 || action >= c.env.ActionSize() {
		return nil, 0, false, fmt.Errorf("collector: action %d outside action space %d", action, c.env.ActionSize())
	}
	obs, reward, done, err := c.env.Step(action)
	if err != nil {
		return nil, 0, false, err
	}
	c.epstep++
	// terminal only on genuine termination, not when the step cap ends
	// the episode
	terminal := done && (c.maxSteps == 0 || c.epstep < c.maxSteps)
	obs = annotate(obs, types.OneHot(action, c.env.ActionSize()), reward, terminal, false)
	c.records = collect(c.records, obs)
	return obs, reward, done, nil
}

// Episode stacks every recorded field into one tensor per field.
func (c *Collector) Episode() (types.Episode, error) {
	if len(c.records) == 0 {
		return nil, fmt.Errorf("collector: no recorded steps")
	}
	episode := make(types.Episode, len(c.records[0]))
	for key := range c.records[0] {
		rows := make([]types.Tensor, 0, len(c.records))
		for _, rec := range c.records {
			t, ok := rec[key]
			if !ok {
				return nil, fmt.Errorf("collector: field %s missing from a recorded step", key)
			}
			rows = append(rows, t)
		}
		t, err := types.Stack(rows)
		if err != nil {
			return nil, fmt.Errorf("collector: field %s: %w", key, err)
		}
		episode[key] = t
	}
	return episode, nil
}

// annotate attaches the bookkeeping fields to an observation.
func annotate(obs types.Observation, action types.Tensor, reward float64, terminal, reset bool) types.Observation {
	out := obs.Clone()
	out["action"] = action
	out["reward"] = types.Scalar(reward)
	out["terminal"] = types.FromBool(terminal)
	out["reset"] = types.FromBool(reset)
	return out
}

// collect appends one annotated observation to the episode record.
func collect(records []types.Observation, obs types.Observation) []types.Observation {
	return append(records, obs)
}
