// Package saga runs a sequence of steps, undoing the completed ones when a later step fails.
package saga

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

type Step struct {
	Name string
	Run  func(ctx context.Context) error
	// Compensate undoes Run. It is called only if Run succeeded and a later step failed.
	Compensate func(ctx context.Context) error
}

// StepError reports the step that failed and any compensation that could not be applied.
type StepError struct {
	Saga          string
	Step          string
	Err           error
	Compensations []error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("saga %s: step %s: %v", e.Saga, e.Step, e.Err)
	if len(e.Compensations) > 0 {
		msg += fmt.Sprintf(" (%d compensations failed)", len(e.Compensations))
	}

	return msg
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Compensated reports whether every completed step was undone.
func (e *StepError) Compensated() bool {
	return len(e.Compensations) == 0
}

// Run executes steps in order. On failure the compensations of the completed
// steps run in reverse order under a context that ignores the caller's
// cancellation, and a *StepError is returned.
func Run(ctx context.Context, name string, steps ...Step) error {
	for i, step := range steps {
		err := step.Run(ctx)
		if err == nil {
			continue
		}

		slog.Warn("saga step failed", "saga", name, "step", step.Name, "error", err)

		return &StepError{
			Saga:          name,
			Step:          step.Name,
			Err:           err,
			Compensations: compensate(context.WithoutCancel(ctx), name, steps[:i]),
		}
	}

	return nil
}

func compensate(ctx context.Context, name string, done []Step) []error {
	var errs []error

	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Compensate == nil {
			continue
		}

		if err := step.Compensate(ctx); err != nil {
			slog.Error("saga compensation failed", "saga", name, "step", step.Name, "error", err)
			errs = append(errs, fmt.Errorf("compensating %s: %w", step.Name, err))

			continue
		}

		slog.Info("saga step compensated", "saga", name, "step", step.Name)
	}

	return errs
}

// FailedStep returns the name of the step that failed, or "" if err did not come from Run.
func FailedStep(err error) string {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step
	}

	return ""
}
