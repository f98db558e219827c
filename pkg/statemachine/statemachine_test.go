package statemachine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solo-knight-dev/fyllo-ai/pkg/statemachine"
)

var (
	stateIdle    = statemachine.StringState("idle")
	stateRunning = statemachine.StringState("running")
	stateDone    = statemachine.StringState("done")

	eventStart  = statemachine.StringEvent("start")
	eventFinish = statemachine.StringEvent("finish")
)

func TestMachine_Fire(t *testing.T) {
	t.Parallel()

	m, err := statemachine.New(stateIdle)
	require.NoError(t, err)
	require.NoError(t, m.AddTransition(stateIdle, stateRunning, eventStart, nil, nil))
	require.NoError(t, m.AddTransition(stateRunning, stateDone, eventFinish, nil, nil))

	require.NoError(t, m.Fire(context.Background(), eventStart, nil))
	assert.Equal(t, stateRunning, m.Current())

	require.NoError(t, m.Fire(context.Background(), eventFinish, nil))
	assert.Equal(t, stateDone, m.Current())
}

func TestMachine_NoTransition(t *testing.T) {
	t.Parallel()

	m, err := statemachine.New(stateIdle)
	require.NoError(t, err)

	err = m.Fire(context.Background(), eventFinish, nil)
	assert.ErrorIs(t, err, statemachine.ErrNoTransition)
	assert.Equal(t, stateIdle, m.Current())
}

func TestMachine_GuardBranching(t *testing.T) {
	t.Parallel()

	m, err := statemachine.New(stateIdle)
	require.NoError(t, err)

	wantRunning := func(ctx context.Context, from statemachine.State, event statemachine.Event, data any) bool {
		return data == "run"
	}
	wantDone := func(ctx context.Context, from statemachine.State, event statemachine.Event, data any) bool {
		return data == "done"
	}
	require.NoError(t, m.AddTransition(stateIdle, stateRunning, eventStart, []statemachine.Guard{wantRunning}, nil))
	require.NoError(t, m.AddTransition(stateIdle, stateDone, eventStart, []statemachine.Guard{wantDone}, nil))

	require.NoError(t, m.Fire(context.Background(), eventStart, "done"))
	assert.Equal(t, stateDone, m.Current())
}

func TestMachine_AllGuardsRejected(t *testing.T) {
	t.Parallel()

	m, err := statemachine.New(stateIdle)
	require.NoError(t, err)

	reject := func(ctx context.Context, from statemachine.State, event statemachine.Event, data any) bool {
		return false
	}
	require.NoError(t, m.AddTransition(stateIdle, stateRunning, eventStart, []statemachine.Guard{reject}, nil))

	err = m.Fire(context.Background(), eventStart, nil)
	assert.ErrorIs(t, err, statemachine.ErrTransitionRejected)
	assert.Equal(t, stateIdle, m.Current())
	assert.False(t, m.CanFire(context.Background(), eventStart, nil))
}

func TestMachine_ActionErrorAbortsTransition(t *testing.T) {
	t.Parallel()

	m, err := statemachine.New(stateIdle)
	require.NoError(t, err)

	boom := errors.New("boom")
	fail := func(ctx context.Context, from, to statemachine.State, event statemachine.Event, data any) error {
		return boom
	}
	require.NoError(t, m.AddTransition(stateIdle, stateRunning, eventStart, nil, []statemachine.Action{fail}))

	err = m.Fire(context.Background(), eventStart, nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, stateIdle, m.Current())
}

func TestMachine_SetCurrentAndReset(t *testing.T) {
	t.Parallel()

	m, err := statemachine.New(stateIdle)
	require.NoError(t, err)

	require.NoError(t, m.SetCurrent(stateRunning))
	assert.Equal(t, stateRunning, m.Current())

	assert.ErrorIs(t, m.SetCurrent(nil), statemachine.ErrInvalidState)

	require.NoError(t, m.Reset())
	assert.Equal(t, stateIdle, m.Current())
}

func TestMachine_InvalidInputs(t *testing.T) {
	t.Parallel()

	_, err := statemachine.New(nil)
	assert.ErrorIs(t, err, statemachine.ErrInvalidState)

	m, err := statemachine.New(stateIdle)
	require.NoError(t, err)

	assert.ErrorIs(t, m.AddTransition(nil, stateRunning, eventStart, nil, nil), statemachine.ErrInvalidTransition)
	assert.ErrorIs(t, m.Fire(context.Background(), nil, nil), statemachine.ErrInvalidEvent)
}
