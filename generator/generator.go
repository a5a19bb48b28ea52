// Package generator drives a policy through an environment episode by
// episode, derives per-episode metrics, and hands finished episodes to the
// shard buffer for persistence.
package generator

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/grid-rl/trajgen/shard"
	"github.com/grid-rl/trajgen/types"
)

// checkpointPollInterval is the sleep between checkpoint lookups while no
// checkpoint is available yet.
const checkpointPollInterval = 10 * time.Second

// CheckpointLoader refreshes a learned policy's weights. Load returns the
// checkpoint's training step, or ok=false when no checkpoint exists yet.
type CheckpointLoader interface {
	Load() (step int, ok bool)
}

// Analyzer observes the per-episode metric series. Analyzers are pure side
// channels; they never influence the run.
type Analyzer interface {
	Analyze(episode int, metrics map[string]float64)
	Close() error
}

// Config parameterizes one generator run.
type Config struct {
	Seed           int
	NumSteps       int           // target total steps across the whole run
	MaxSteps       int           // per-episode step cap
	StepsPerShard  int           // flush threshold in buffered steps
	Discount       float64       // gamma for the discounted return, default 0.999
	ReloadInterval time.Duration // how often to refresh the checkpoint

	ArtifactDir string
	Env         types.Environment
	Policy      types.Policy
	Checkpoint  CheckpointLoader // nil unless the policy is a learned model
	Analyzers   []Analyzer
}

// Generator owns the rollout loop and its counters. Everything runs on the
// caller's goroutine; the episode buffer and the policy state have no other
// owners.
type Generator struct {
	config    Config
	collector *Collector
	buffer    *shard.Buffer
	counters  shard.RunCounters

	modelStep  int
	lastReload time.Time
}

// New initializes a generator, resuming the step and episode counters from
// shard files already in the artifact directory.
func New(config Config) (*Generator, error) {
	if config.Env == nil || config.Policy == nil {
		return nil, fmt.Errorf("generator: environment and policy are required")
	}
	if config.StepsPerShard <= 0 {
		return nil, fmt.Errorf("generator: steps per shard must be positive")
	}
	if config.Discount == 0 {
		config.Discount = 0.999
	}
	counters, err := shard.CountSteps(config.ArtifactDir)
	if err != nil {
		return nil, fmt.Errorf("generator: scanning %s: %w", config.ArtifactDir, err)
	}
	fmt.Printf("Found %d episodes, %d steps in %s\n", counters.Episodes, counters.Steps, config.ArtifactDir)
	return &Generator{
		config:    config,
		collector: NewCollector(config.Env, config.MaxSteps),
		buffer:    shard.NewBuffer(),
		counters:  counters,
	}, nil
}

// Counters returns the current run counters.
func (g *Generator) Counters() shard.RunCounters {
	return g.counters
}

// Run unrolls episodes until the target step count is reached or the context
// is cancelled. Environment and policy errors are fatal and propagate.
func (g *Generator) Run(ctx context.Context) error {
	for g.counters.Steps < g.config.NumSteps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if g.config.Checkpoint != nil && time.Since(g.lastReload) > g.config.ReloadInterval {
			if err := g.reloadCheckpoint(ctx); err != nil {
				return err
			}
		}

		if err := g.runEpisode(); err != nil {
			return err
		}
	}

	for _, a := range g.config.Analyzers {
		if err := a.Close(); err != nil {
			log.Printf("generator: analyzer close: %v", err)
		}
	}
	fmt.Printf("Generator %d done.\n", g.config.Seed)
	return nil
}

// reloadCheckpoint polls until a checkpoint is available. Waiting is
// unbounded apart from context cancellation: a generator without weights has
// nothing useful to do.
func (g *Generator) reloadCheckpoint(ctx context.Context) error {
	for {
		if step, ok := g.config.Checkpoint.Load(); ok {
			fmt.Printf("Generator loaded model checkpoint %d\n", step)
			g.modelStep = step
			g.lastReload = time.Now()
			return nil
		}
		log.Printf("Generator model checkpoint not found, waiting...")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(checkpointPollInterval):
		}
	}
}

func (g *Generator) runEpisode() error {
	epsteps := 0
	timer := time.Now()

	obs, err := g.collector.Reset()
	if err != nil {
		return fmt.Errorf("generator: reset: %w", err)
	}

	stepMetrics := make(map[string][]float64)
	done := false
	for !done {
		action, mets, err := g.config.Policy.Observe(obs)
		if err != nil {
			return fmt.Errorf("generator: policy: %w", err)
		}
		obs, _, done, err = g.collector.Step(action)
		if err != nil {
			return fmt.Errorf("generator: step: %w", err)
		}
		g.counters.Steps++
		epsteps++
		for k, v := range mets {
			stepMetrics[k] = append(stepMetrics[k], v)
		}
	}
	g.counters.Episodes++

	data, err := g.collector.Episode()
	if err != nil {
		return err
	}
	attachPolicySeries(data, stepMetrics)

	rewards := data["reward"].Data
	metrics := episodeMetrics(rewards, epsteps, time.Since(timer).Seconds(), g.config.Discount)
	for k, v := range stepMetrics {
		metrics["policy/"+k] = stat.Mean(v, nil)
	}

	fmt.Printf("Episode recorded:  steps: %d,  reward: %.1f,  fps: %.0f,  total steps: %d,  episodes: %d\n",
		epsteps, metrics["return"], metrics["fps"], g.counters.Steps, g.counters.Episodes)

	for _, a := range g.config.Analyzers {
		a.Analyze(g.counters.Episodes, metrics)
	}

	g.buffer.Add(data)
	if g.buffer.Steps() >= g.config.StepsPerShard {
		name, err := g.buffer.Flush(g.config.ArtifactDir, g.config.Seed, g.counters.Episodes)
		if err != nil {
			return fmt.Errorf("generator: flush: %w", err)
		}
		fmt.Printf("Saved shard %s\n", name)
	}
	return nil
}

// attachPolicySeries stores the learned policy's per-step series alongside
// the episode fields. The series are one row short of the episode (no policy
// call precedes the reset row), so value and entropy pad the tail and the
// action probability pads the head with NaN.
func attachPolicySeries(data types.Episode, stepMetrics map[string][]float64) {
	values, ok := stepMetrics["policy_value"]
	if !ok {
		return
	}
	entropies := stepMetrics["policy_entropy"]
	probs := stepMetrics["action_prob"]
	nan := math.NaN()
	data["policy_value"] = types.Vector(append(append([]float64(nil), values...), nan))
	data["policy_entropy"] = types.Vector(append(append([]float64(nil), entropies...), nan))
	data["action_prob"] = types.Vector(append([]float64{nan}, probs...))
}
