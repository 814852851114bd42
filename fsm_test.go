package sampler_test

import (
	"bytes"
	"testing"

	sampler "github.com/l0rem1psum/sampler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_Table(t *testing.T) {
	tests := []struct {
		state   sampler.State
		command sampler.Command
		want    sampler.State
		effect  sampler.Effect
	}{
		{sampler.StateIdle, sampler.CommandStart, sampler.StateRunning, sampler.EffectEnableEmission},
		{sampler.StateIdle, sampler.CommandShutdown, sampler.StateStopping, sampler.EffectExit},
		{sampler.StateRunning, sampler.CommandStop, sampler.StateIdle, sampler.EffectDisableEmission},
		{sampler.StateRunning, sampler.CommandShutdown, sampler.StateStopping, sampler.EffectExit},
		{sampler.StateIdle, sampler.CommandStop, sampler.StateIdle, sampler.EffectNone},
		{sampler.StateRunning, sampler.CommandStart, sampler.StateRunning, sampler.EffectNone},
		{sampler.StateStopping, sampler.CommandStart, sampler.StateStopping, sampler.EffectNone},
		{sampler.StateStopping, sampler.CommandStop, sampler.StateStopping, sampler.EffectNone},
		{sampler.StateStopping, sampler.CommandShutdown, sampler.StateStopping, sampler.EffectNone},
	}

	for _, tt := range tests {
		t.Run(tt.state.String()+"/"+tt.command.String(), func(t *testing.T) {
			got, effect := sampler.Transition(tt.state, tt.command)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.effect, effect)
		})
	}
}

func TestTransition_EveryPairHasARule(t *testing.T) {
	rules := sampler.Transitions()
	assert.Len(t, rules, 9)

	seen := make(map[[2]int32]bool)
	for _, r := range rules {
		seen[[2]int32{int32(r.From), int32(r.Command)}] = true
	}
	for _, s := range []sampler.State{sampler.StateIdle, sampler.StateRunning, sampler.StateStopping} {
		for _, c := range []sampler.Command{sampler.CommandStart, sampler.CommandStop, sampler.CommandShutdown} {
			assert.True(t, seen[[2]int32{int32(s), int32(c)}], "missing rule for %s/%s", s, c)
		}
	}
}

func TestTransition_UnknownCommandIsNoop(t *testing.T) {
	got, effect := sampler.Transition(sampler.StateRunning, sampler.Command(42))
	assert.Equal(t, sampler.StateRunning, got)
	assert.Equal(t, sampler.EffectNone, effect)

	got, effect = sampler.Transition(sampler.State(42), sampler.CommandStart)
	assert.Equal(t, sampler.State(42), got)
	assert.Equal(t, sampler.EffectNone, effect)
}

func TestTransition_StoppingIsTerminal(t *testing.T) {
	state := sampler.StateIdle
	sequence := []sampler.Command{
		sampler.CommandStart, sampler.CommandStop, sampler.CommandStart, sampler.CommandShutdown,
		sampler.CommandStart, sampler.CommandStop, sampler.CommandShutdown, sampler.CommandStart,
	}

	var history []sampler.State
	for _, c := range sequence {
		state, _ = sampler.Transition(state, c)
		history = append(history, state)
	}

	assert.Equal(t, []sampler.State{
		sampler.StateRunning, sampler.StateIdle, sampler.StateRunning, sampler.StateStopping,
		sampler.StateStopping, sampler.StateStopping, sampler.StateStopping, sampler.StateStopping,
	}, history)
}

func TestTransitions_ReturnsCopy(t *testing.T) {
	rules := sampler.Transitions()
	rules[0].To = sampler.StateStopping

	got, _ := sampler.Transition(sampler.StateIdle, sampler.CommandStart)
	assert.Equal(t, sampler.StateRunning, got)
}

func TestParseCommand(t *testing.T) {
	for in, want := range map[string]sampler.Command{
		"start":      sampler.CommandStart,
		"STOP":       sampler.CommandStop,
		" Shutdown ": sampler.CommandShutdown,
	} {
		got, err := sampler.ParseCommand(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := sampler.ParseCommand("pause")
	assert.ErrorIs(t, err, sampler.ErrUnknownCommand)
}

func TestTransitionGraph(t *testing.T) {
	g, err := sampler.TransitionGraph()
	require.NoError(t, err)

	order, err := g.Order()
	require.NoError(t, err)
	assert.Equal(t, 3, order)

	// Idle->Running, Idle->Stopping, Running->Idle, Running->Stopping
	size, err := g.Size()
	require.NoError(t, err)
	assert.Equal(t, 4, size)

	edge, err := g.Edge("Idle", "Running")
	require.NoError(t, err)
	assert.Equal(t, "Start", edge.Properties.Attributes["label"])

	_, err = g.Edge("Stopping", "Stopping")
	assert.Error(t, err, "no-op rows are not drawn")
}

func TestDumpDot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampler.DumpDot(&buf))

	dot := buf.String()
	assert.Contains(t, dot, "digraph")
	assert.Contains(t, dot, "Shutdown")
}
