package sampler

import (
	"fmt"
	"strings"
)

// State is the lifecycle state of a sampler worker.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopping
)

// String returns a human-readable representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	default:
		return "Unknown"
	}
}

// Command is a request from the consumer side to the worker. Commands carry no payload.
type Command int32

const (
	CommandStart Command = iota
	CommandStop
	CommandShutdown
)

func (c Command) String() string {
	switch c {
	case CommandStart:
		return "Start"
	case CommandStop:
		return "Stop"
	case CommandShutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// ParseCommand maps "start", "stop" and "shutdown" (any case) to a Command.
func ParseCommand(s string) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "start":
		return CommandStart, nil
	case "stop":
		return CommandStop, nil
	case "shutdown":
		return CommandShutdown, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
	}
}

// Effect is the side effect the owner of the state must perform after a transition.
type Effect int32

const (
	EffectNone Effect = iota
	EffectEnableEmission
	EffectDisableEmission
	EffectExit // disable emission and leave the worker loop
)

func (e Effect) String() string {
	switch e {
	case EffectNone:
		return "None"
	case EffectEnableEmission:
		return "EnableEmission"
	case EffectDisableEmission:
		return "DisableEmission"
	case EffectExit:
		return "Exit"
	default:
		return "Unknown"
	}
}

// TransitionRule is one row of the transition table.
type TransitionRule struct {
	From    State
	Command Command
	To      State
	Effect  Effect
}

type transitionKey struct {
	state   State
	command Command
}

// Every (state, command) pair has a row, no-ops included.
var transitionRules = []TransitionRule{
	{StateIdle, CommandStart, StateRunning, EffectEnableEmission},
	{StateIdle, CommandStop, StateIdle, EffectNone},
	{StateIdle, CommandShutdown, StateStopping, EffectExit},
	{StateRunning, CommandStart, StateRunning, EffectNone},
	{StateRunning, CommandStop, StateIdle, EffectDisableEmission},
	{StateRunning, CommandShutdown, StateStopping, EffectExit},
	{StateStopping, CommandStart, StateStopping, EffectNone},
	{StateStopping, CommandStop, StateStopping, EffectNone},
	{StateStopping, CommandShutdown, StateStopping, EffectNone},
}

var transitionTable = func() map[transitionKey]TransitionRule {
	table := make(map[transitionKey]TransitionRule, len(transitionRules))
	for _, rule := range transitionRules {
		table[transitionKey{rule.From, rule.Command}] = rule
	}
	return table
}()

// Transition is the pure transition function of the sampler state machine. It never
// fails: pairs outside the table keep the state unchanged and request no effect.
func Transition(state State, command Command) (State, Effect) {
	rule, ok := transitionTable[transitionKey{state, command}]
	if !ok {
		return state, EffectNone
	}
	return rule.To, rule.Effect
}

// Transitions returns a copy of the transition table rows.
func Transitions() []TransitionRule {
	rules := make([]TransitionRule, len(transitionRules))
	copy(rules, transitionRules)
	return rules
}
