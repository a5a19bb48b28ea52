package gridworld

import (
	"math"
	"testing"
)

func TestNormalizeHeading(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{180, 180},
		{-180, 180},
		{270, -90},
		{-270, 90},
		{540, 180},
	}
	for _, c := range cases {
		if got := NormalizeHeading(c.in); got != c.want {
			t.Errorf("NormalizeHeading(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestApplyTurnWraps(t *testing.T) {
	m := NewOpenMap(5, 5)
	p := Pose{X: 2.5, Y: 2.5, Heading: 180}

	right := Apply(m, p, ActionTurnRight, 1.0, 90.0)
	if right.Heading != -90 {
		t.Errorf("turn right from 180 gave heading %v, want -90", right.Heading)
	}
	left := Apply(m, Pose{X: 2.5, Y: 2.5, Heading: -135}, ActionTurnLeft, 1.0, 90.0)
	if left.Heading != 135 {
		t.Errorf("turn left from -135 gave heading %v, want 135", left.Heading)
	}
}

func TestApplyForwardBlocked(t *testing.T) {
	m := NewOpenMap(5, 5)
	p := Pose{X: 3.5, Y: 2.5, Heading: 0} // facing the east wall

	next := Apply(m, p, ActionForward, 1.0, 90.0)
	if next != p {
		t.Errorf("blocked forward moved the pose: %+v -> %+v", p, next)
	}
}

func TestApplyForwardMoves(t *testing.T) {
	m := NewOpenMap(5, 5)
	p := Pose{X: 1.5, Y: 1.5, Heading: 90}

	next := Apply(m, p, ActionForward, 1.0, 90.0)
	if math.Abs(next.X-1.5) > 1e-9 || math.Abs(next.Y-2.5) > 1e-9 {
		t.Errorf("forward at heading 90 gave (%v, %v), want (1.5, 2.5)", next.X, next.Y)
	}
}

func TestMazeEnvEpisode(t *testing.T) {
	m, err := ParseMap([]string{
		"#####",
		"#..G#",
		"#####",
	})
	if err != nil {
		t.Fatalf("parse map: %v", err)
	}
	env := NewMazeEnv(MazeEnvConfig{Map: m, StepSize: 1.0, TurnSize: 90.0, MaxSteps: 20, Seed: 1})

	obs, err := env.Reset()
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	for _, field := range []string{"image", "map_agent", "agent_pos", "agent_dir"} {
		if _, ok := obs[field]; !ok {
			t.Errorf("reset observation missing %q", field)
		}
	}
	grid := obs["map_agent"]
	if grid.Shape[0] != 5 || grid.Shape[1] != 3 {
		t.Fatalf("map_agent shape %v, want [5 3]", grid.Shape)
	}
	pos := obs["agent_pos"]
	if grid.Data[int(pos.Data[0])*3+int(pos.Data[1])] != CellAgent {
		t.Errorf("agent cell not marked in map_agent")
	}

	// the cap must end the episode even if the goal is never reached
	done := false
	for i := 0; i < 20 && !done; i++ {
		_, _, done, err = env.Step(ActionTurnLeft)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if !done {
		t.Errorf("episode did not end at the step cap")
	}
}

func TestMazeEnvGoalReward(t *testing.T) {
	m, err := ParseMap([]string{
		"#####",
		"#..G#",
		"#####",
	})
	if err != nil {
		t.Fatalf("parse map: %v", err)
	}
	env := NewMazeEnv(MazeEnvConfig{Map: m, StepSize: 1.0, TurnSize: 90.0, MaxSteps: 50, Seed: 3})
	if _, err := env.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	// drive straight east; the agent starts in one of the two free cells
	env.pose = Pose{X: 1.5, Y: 1.5, Heading: 0}
	var reward float64
	var done bool
	for i := 0; i < 3 && !done; i++ {
		_, reward, done, err = env.Step(ActionForward)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if !done || reward != 1 {
		t.Errorf("expected goal termination with reward 1, got done=%v reward=%v", done, reward)
	}
}
