package gridworld

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/grid-rl/trajgen/types"
)

// MazeEnvConfig parameterizes a maze environment.
type MazeEnvConfig struct {
	Map      *Map
	StepSize float64 // forward step length in cell units
	TurnSize float64 // turn increment in degrees
	MaxSteps int     // episode step cap, 0 for unlimited
	Seed     uint64
}

// MazeEnv is a maze with a continuous agent pose and the three discrete
// turn/forward actions. Reaching a goal cell ends the episode with reward 1.
type MazeEnv struct {
	config MazeEnvConfig
	rand   *rand.Rand
	pose   Pose
	steps  int
}

var _ types.Environment = &MazeEnv{}

// NewMazeEnv creates a maze environment.
func NewMazeEnv(config MazeEnvConfig) *MazeEnv {
	if config.StepSize == 0 {
		config.StepSize = 0.5
	}
	if config.TurnSize == 0 {
		config.TurnSize = 45
	}
	return &MazeEnv{
		config: config,
		rand:   rand.New(rand.NewSource(config.Seed)),
	}
}

func (e *MazeEnv) ActionSize() int { return NumActions }

// StepSize exposes the forward step length, used to configure the
// navigation policy.
func (e *MazeEnv) StepSize() float64 { return e.config.StepSize }

// TurnSize exposes the turn increment in degrees.
func (e *MazeEnv) TurnSize() float64 { return e.config.TurnSize }

// Pose exposes the agent's current pose, for tests.
func (e *MazeEnv) Pose() Pose { return e.pose }

func (e *MazeEnv) Reset() (types.Observation, error) {
	m := e.config.Map
	for {
		x := e.rand.Intn(m.Width())
		y := e.rand.Intn(m.Height())
		if m.At(x, y) != CellWall && m.At(x, y) != CellGoal {
			turns := int(math.Round(360 / e.config.TurnSize))
			heading := NormalizeHeading(float64(e.rand.Intn(turns)) * e.config.TurnSize)
			e.pose = Pose{X: float64(x) + 0.5, Y: float64(y) + 0.5, Heading: heading}
			break
		}
	}
	e.steps = 0
	return e.observe(), nil
}

func (e *MazeEnv) Step(action int) (types.Observation, float64, bool, error) {
	e.steps++
	e.pose = Apply(e.config.Map, e.pose, action, e.config.StepSize, e.config.TurnSize)

	reward := 0.0
	done := false
	if e.config.Map.At(int(e.pose.X), int(e.pose.Y)) == CellGoal {
		reward = 1.0
		done = true
	}
	if e.config.MaxSteps > 0 && e.steps >= e.config.MaxSteps {
		done = true
	}
	return e.observe(), reward, done, nil
}

func (e *MazeEnv) observe() types.Observation {
	m := e.config.Map
	w, h := m.Width(), m.Height()

	image := types.Tensor{Shape: []int{w, h, 1}, Data: make([]float64, w*h)}
	mapAgent := types.Tensor{Shape: []int{w, h}, Data: make([]float64, w*h)}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			c := float64(m.At(x, y))
			image.Data[x*h+y] = c
			mapAgent.Data[x*h+y] = c
		}
	}
	ax, ay := int(e.pose.X), int(e.pose.Y)
	if ax >= 0 && ay >= 0 && ax < w && ay < h {
		mapAgent.Data[ax*h+ay] = CellAgent
	}

	rad := e.pose.Heading / 180 * math.Pi
	return types.Observation{
		"image":     image,
		"map_agent": mapAgent,
		"agent_pos": types.Vector([]float64{e.pose.X, e.pose.Y}),
		"agent_dir": types.Vector([]float64{math.Cos(rad), math.Sin(rad)}),
	}
}
