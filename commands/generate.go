package commands

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/grid-rl/trajgen/analysis"
	"github.com/grid-rl/trajgen/generator"
	"github.com/grid-rl/trajgen/gridworld"
	"github.com/grid-rl/trajgen/policies"
	"github.com/grid-rl/trajgen/types"
)

// The closed set of policy kinds this binary can run.
const (
	PolicyRandom       = "random"
	PolicyWander       = "wander"
	PolicyBouncingBall = "bouncing_ball"
	PolicyNavigation   = "navigation"
	PolicyNetwork      = "network"
)

func GenerateCommand() *cobra.Command {
	var (
		policyKind     string
		numSteps       int
		envMaxSteps    int
		stepsPerShard  int
		reloadInterval time.Duration
		width          int
		height         int
		stepSize       float64
		turnSize       float64
		epsilon        float64
		plotReturns    bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the rollout loop until the target step count is reached",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := gridworld.NewMazeEnv(gridworld.MazeEnvConfig{
				Map:      gridworld.NewOpenMap(width, height),
				StepSize: stepSize,
				TurnSize: turnSize,
				MaxSteps: envMaxSteps,
				Seed:     uint64(seed),
			})

			policy, err := buildPolicy(policyKind, env, epsilon, uint64(seed))
			if err != nil {
				return err
			}

			analyzers := []generator.Analyzer{analysis.NewMeanLogger()}
			if plotReturns {
				analyzers = append(analyzers, analysis.NewReturnPlotter(filepath.Join(saveDir, "returns.png")))
			}

			gen, err := generator.New(generator.Config{
				Seed:           seed,
				NumSteps:       numSteps,
				MaxSteps:       envMaxSteps,
				StepsPerShard:  stepsPerShard,
				ReloadInterval: reloadInterval,
				ArtifactDir:    saveDir,
				Env:            env,
				Policy:         policy,
				Analyzers:      analyzers,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return gen.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&policyKind, "policy", "p", PolicyRandom, "Policy kind: random, wander, bouncing_ball, navigation, network")
	cmd.Flags().IntVarP(&numSteps, "num-steps", "n", 1_000_000, "Total steps to generate across the run")
	cmd.Flags().IntVar(&envMaxSteps, "env-max-steps", 500, "Per-episode step cap")
	cmd.Flags().IntVar(&stepsPerShard, "steps-per-shard", 2000, "Buffered steps that trigger a shard flush")
	cmd.Flags().DurationVar(&reloadInterval, "reload-interval", 60*time.Second, "Checkpoint refresh interval for the network policy")
	cmd.Flags().IntVar(&width, "width", 11, "Maze width in cells")
	cmd.Flags().IntVar(&height, "height", 11, "Maze height in cells")
	cmd.Flags().Float64Var(&stepSize, "step-size", 0.5, "Forward step length in cell units")
	cmd.Flags().Float64Var(&turnSize, "turn-size", 45, "Turn increment in degrees")
	cmd.Flags().Float64Var(&epsilon, "epsilon", 0.10, "Random action probability of the navigation policy")
	cmd.Flags().BoolVar(&plotReturns, "plot", false, "Render an episode return chart at the end of the run")
	return cmd
}

func buildPolicy(kind string, env *gridworld.MazeEnv, epsilon float64, seed uint64) (types.Policy, error) {
	switch kind {
	case PolicyRandom:
		return policies.NewRandom(env.ActionSize(), seed), nil
	case PolicyWander:
		return policies.NewWander(seed), nil
	case PolicyBouncingBall:
		return policies.NewBouncingBall(seed), nil
	case PolicyNavigation:
		return policies.NewNavigation(env.StepSize(), env.TurnSize(), epsilon, seed), nil
	case PolicyNetwork:
		// the model forward pass lives outside this binary
		return nil, fmt.Errorf("policy %q needs a linked model implementation", kind)
	default:
		return nil, fmt.Errorf("unknown policy %q", kind)
	}
}
