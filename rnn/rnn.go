// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package rnn

import (
	"github.com/born-ml/recurrent/internal/parallel"
	"github.com/born-ml/recurrent/internal/rnn"
	"github.com/born-ml/recurrent/internal/tensor"
)

// Float is a constraint for supported kernel element types.
type Float = tensor.Float

// Shape represents the dimensions of a flat row-major buffer.
type Shape = tensor.Shape

// Step is a checked wrapper around the LSTM kernels for a fixed batch size
// and hidden dimension. It validates the caller's dimension contract,
// allocates outputs, and dispatches rows across worker goroutines.
type Step[T Float] = rnn.Step[T]

// NewStep creates a Step for the given batch size and hidden dimension.
//
// Example:
//
//	step, err := rnn.NewStep[float32](32, 256)
func NewStep[T Float](batch, hidden int) (*Step[T], error) {
	return rnn.NewStep[T](batch, hidden)
}

// ParallelConfig controls how Step splits batch rows across goroutines.
type ParallelConfig = parallel.Config

// DefaultParallelConfig returns the CPU-count based default configuration.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// Kernels

// LSTMUnit computes one forward LSTM time step over flat row-major buffers.
// See the internal kernel documentation for the full layout and masking
// contract; buffer sizing is the caller's responsibility (use Step for a
// checked boundary).
func LSTMUnit[T Float](n, d, t int, cPrev, gates []T, seqLengths []int32, c, h []T) {
	rnn.LSTMUnit(n, d, t, cPrev, gates, seqLengths, c, h)
}

// LSTMUnitGradient computes the backward pass of LSTMUnit, writing the
// gradient w.r.t. the previous cell state and the packed gate
// pre-activations.
func LSTMUnitGradient[T Float](
	n, d, t int,
	cPrev, gates []T,
	seqLengths []int32,
	c, h []T,
	cDiff, hDiff []T,
	cPrevDiff, gatesDiff []T,
) {
	rnn.LSTMUnitGradient(n, d, t, cPrev, gates, seqLengths, c, h, cDiff, hDiff, cPrevDiff, gatesDiff)
}
