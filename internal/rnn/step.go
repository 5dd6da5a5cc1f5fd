package rnn

import (
	"fmt"

	"github.com/born-ml/recurrent/internal/parallel"
	"github.com/born-ml/recurrent/internal/tensor"
)

// Step owns the dimension contract around the LSTM kernels for a fixed batch
// size and hidden dimension. It is the checked boundary the bare kernels do
// not provide: it validates buffer sizes against the [batch, hidden] and
// [batch, 4*hidden] shapes, allocates the outputs, and dispatches the
// per-row kernels across worker goroutines. Every row and feature is
// independent, so parallel dispatch needs no synchronization.
//
// A Step holds no state between calls; the caller threads cell and hidden
// values across time by invoking Forward once per step (forward in time) and
// Backward once per step (backward in time) during training.
//
// Example:
//
//	step, err := rnn.NewStep[float32](batch, hidden)
//	if err != nil { ... }
//	c, h, err := step.Forward(t, cPrev, gates, seqLengths)
type Step[T tensor.Float] struct {
	state tensor.Shape // [batch, hidden]
	gate  tensor.Shape // [batch, 4*hidden]
	par   parallel.Config
}

// NewStep creates a Step for the given batch size and hidden dimension.
// Both must be positive. Parallelism defaults to the CPU count.
func NewStep[T tensor.Float](batch, hidden int) (*Step[T], error) {
	state := tensor.Shape{batch, hidden}
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("invalid step dimensions: %w", err)
	}

	return &Step[T]{
		state: state,
		gate:  tensor.Shape{batch, 4 * hidden},
		par:   parallel.DefaultConfig(),
	}, nil
}

// Batch returns the batch size N.
func (s *Step[T]) Batch() int { return s.state[0] }

// Hidden returns the hidden dimension D.
func (s *Step[T]) Hidden() int { return s.state[1] }

// SetParallelism overrides the default parallel execution config.
// A Config with Enabled=false forces sequential execution.
func (s *Step[T]) SetParallelism(cfg parallel.Config) {
	s.par = cfg
}

// Forward runs one forward time step, allocating and returning the new cell
// state c and hidden state h, both [batch, hidden].
func (s *Step[T]) Forward(t int, cPrev, gates []T, seqLengths []int32) (c, h []T, err error) {
	if err := s.checkStep(t, cPrev, gates, seqLengths); err != nil {
		return nil, nil, err
	}

	c = make([]T, s.state.NumElements())
	h = make([]T, s.state.NumElements())

	parallel.ForRows(s.Batch(), s.Hidden(), func(row int) {
		lstmUnitRow(row, s.Hidden(), t, cPrev, gates, seqLengths, c, h)
	}, s.par)

	return c, h, nil
}

// Backward runs one backward time step. c and h are the forward outputs for
// this step; cDiff and hDiff are the incoming gradients w.r.t. them. It
// allocates and returns the gradient w.r.t. the previous cell state
// [batch, hidden] and the gradient w.r.t. the packed gates [batch, 4*hidden].
func (s *Step[T]) Backward(
	t int,
	cPrev, gates []T,
	seqLengths []int32,
	c, h []T,
	cDiff, hDiff []T,
) (cPrevDiff, gatesDiff []T, err error) {
	if err := s.checkStep(t, cPrev, gates, seqLengths); err != nil {
		return nil, nil, err
	}
	for _, buf := range []struct {
		name string
		data []T
	}{{"c", c}, {"h", h}, {"cDiff", cDiff}, {"hDiff", hDiff}} {
		if len(buf.data) != s.state.NumElements() {
			return nil, nil, fmt.Errorf("%s length %d does not match state shape %v", buf.name, len(buf.data), s.state)
		}
	}

	cPrevDiff = make([]T, s.state.NumElements())
	gatesDiff = make([]T, s.gate.NumElements())

	parallel.ForRows(s.Batch(), s.Hidden(), func(row int) {
		lstmUnitGradientRow(row, s.Hidden(), t, cPrev, gates, seqLengths, c, cDiff, hDiff, cPrevDiff, gatesDiff)
	}, s.par)

	return cPrevDiff, gatesDiff, nil
}

// checkStep validates the dimension contract shared by Forward and Backward.
func (s *Step[T]) checkStep(t int, cPrev, gates []T, seqLengths []int32) error {
	if t < 0 {
		return fmt.Errorf("negative time step %d", t)
	}
	if len(cPrev) != s.state.NumElements() {
		return fmt.Errorf("cPrev length %d does not match state shape %v", len(cPrev), s.state)
	}
	// The packed-gate contract: gate width must equal 4 * hidden.
	if len(gates) != s.gate.NumElements() {
		return fmt.Errorf("gates length %d does not match gate shape %v", len(gates), s.gate)
	}
	if len(seqLengths) != s.Batch() {
		return fmt.Errorf("seqLengths length %d does not match batch size %d", len(seqLengths), s.Batch())
	}
	for i, l := range seqLengths {
		if l < 0 {
			return fmt.Errorf("negative sequence length %d at index %d", l, i)
		}
	}
	return nil
}
