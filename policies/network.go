package policies

import (
	"fmt"

	"github.com/grid-rl/trajgen/types"
)

// Model is the learned-model capability the network policy wraps. The model
// itself (weights, forward pass, checkpoint format) lives outside this
// module.
type Model interface {
	// Forward consumes an annotated observation and returns the sampled
	// action with its value, entropy and probability estimates.
	Forward(types.Observation) (action int, value, entropy, actionProb float64, err error)
}

// Network defers action selection to a learned model and reports the
// model's value/entropy estimates as per-step metrics.
type Network struct {
	model Model
}

var _ types.Policy = &Network{}

func NewNetwork(model Model) (*Network, error) {
	if model == nil {
		return nil, fmt.Errorf("network policy requires a model")
	}
	return &Network{model: model}, nil
}

func (n *Network) Observe(obs types.Observation) (int, map[string]float64, error) {
	action, value, entropy, prob, err := n.model.Forward(obs)
	if err != nil {
		return 0, nil, err
	}
	metrics := map[string]float64{
		"policy_value":   value,
		"policy_entropy": entropy,
		"action_prob":    prob,
	}
	return action, metrics, nil
}
