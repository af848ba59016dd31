package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// sagaStep pairs a forward action with the action that undoes it. Steps whose
// effects need no undo (typically the final step) leave compensate nil.
type sagaStep struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// saga executes steps in order and, on the first failure, runs the
// compensations of every previously completed step in reverse order. The
// store offers no multi-statement transaction, so this unwind is the only
// mechanism approximating atomicity across the ledger insert and balance
// update writes.
type saga struct {
	op     string
	steps  []sagaStep
	logger *slog.Logger
}

func newSaga(op string, logger *slog.Logger) *saga {
	return &saga{op: op, logger: logger}
}

func (s *saga) add(name string, run, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, sagaStep{name: name, run: run, compensate: compensate})
}

// execute runs all steps. A step failure (including a timeout, whose real
// outcome is unknown) triggers the unwind; if every compensation succeeds the
// caller gets ErrTransactionFailed, otherwise a *CompensationError.
func (s *saga) execute(ctx context.Context) error {
	for i, step := range s.steps {
		err := step.run(ctx)
		if err == nil {
			continue
		}

		s.logger.Error("movement step failed, compensating",
			"op", s.op, "step", step.name, "error", err)

		if cerr := s.unwind(ctx, i-1); cerr != nil {
			return cerr
		}
		return fmt.Errorf("%s: step %s: %v: %w", s.op, step.name, err, ErrTransactionFailed)
	}
	return nil
}

// unwind compensates steps last..first. Compensation failures are collected
// rather than aborting the unwind: later steps may still be reversible even
// when an earlier reversal fails.
func (s *saga) unwind(ctx context.Context, last int) error {
	var failures []CompensationFailure
	for i := last; i >= 0; i-- {
		step := s.steps[i]
		if step.compensate == nil {
			continue
		}
		if err := step.compensate(ctx); err != nil {
			s.logger.Error("compensation failed, manual reconciliation required",
				"op", s.op, "step", step.name, "error", err)
			failures = append(failures, CompensationFailure{Step: step.name, Err: err})
		}
	}
	if len(failures) > 0 {
		return &CompensationError{Op: s.op, Failures: failures}
	}
	return nil
}

// CompensationFailure records one compensating action that could not be applied.
type CompensationFailure struct {
	Step string
	Err  error
}

// CompensationError is returned when a write step failed and the reversal of
// one or more prior steps also failed, leaving the store inconsistent. It
// carries which reversals failed so operators can reconcile manually, and it
// unwraps to ErrCompensationFailed so callers can distinguish it from the
// clean-rollback ErrTransactionFailed case.
type CompensationError struct {
	Op       string
	Failures []CompensationFailure
}

func (e *CompensationError) Error() string {
	names := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		names = append(names, f.Step)
	}
	return fmt.Sprintf("%s: compensation failed for steps [%s]", e.Op, strings.Join(names, ", "))
}

func (e *CompensationError) Unwrap() error {
	return ErrCompensationFailed
}
