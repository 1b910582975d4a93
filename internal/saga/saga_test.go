package saga_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/saga"
)

type recorder struct {
	calls []string
}

func (r *recorder) step(name string, runErr, compErr error) saga.Step {
	return saga.Step{
		Name: name,
		Run: func(context.Context) error {
			r.calls = append(r.calls, "run:"+name)
			return runErr
		},
		Compensate: func(context.Context) error {
			r.calls = append(r.calls, "undo:"+name)
			return compErr
		},
	}
}

func TestRun_AllSucceed(t *testing.T) {
	r := &recorder{}

	err := saga.Run(context.Background(), "test", r.step("a", nil, nil), r.step("b", nil, nil))

	require.NoError(t, err)
	assert.Equal(t, []string{"run:a", "run:b"}, r.calls)
}

func TestRun_CompensatesInReverse(t *testing.T) {
	r := &recorder{}
	boom := errors.New("boom")

	err := saga.Run(context.Background(), "test",
		r.step("a", nil, nil),
		r.step("b", nil, nil),
		r.step("c", boom, nil),
		r.step("d", nil, nil),
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "c", saga.FailedStep(err))
	assert.Equal(t, []string{"run:a", "run:b", "run:c", "undo:b", "undo:a"}, r.calls)

	var stepErr *saga.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.True(t, stepErr.Compensated())
}

func TestRun_CollectsCompensationFailures(t *testing.T) {
	r := &recorder{}

	err := saga.Run(context.Background(), "test",
		r.step("a", nil, nil),
		r.step("b", nil, errors.New("cannot undo")),
		r.step("c", errors.New("boom"), nil),
	)

	var stepErr *saga.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.False(t, stepErr.Compensated())
	assert.Len(t, stepErr.Compensations, 1)
	assert.Equal(t, []string{"run:a", "run:b", "run:c", "undo:b", "undo:a"}, r.calls)
}

func TestRun_CompensationIgnoresCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var compCtxErr error

	err := saga.Run(ctx, "test",
		saga.Step{
			Name:       "a",
			Run:        func(context.Context) error { return nil },
			Compensate: func(c context.Context) error { compCtxErr = c.Err(); return nil },
		},
		saga.Step{
			Name: "b",
			Run: func(context.Context) error {
				cancel()
				return context.Canceled
			},
		},
	)

	require.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, compCtxErr)
}

func TestFailedStep_NotASagaError(t *testing.T) {
	assert.Equal(t, "", saga.FailedStep(errors.New("x")))
}
