// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package rnn provides the public API for the batched LSTM cell kernels.
//
// # Overview
//
// This package contains:
//   - Kernels: LSTMUnit (forward), LSTMUnitGradient (backward)
//   - Step: checked, parallel-dispatching wrapper around the kernels
//   - Float: generics constraint covering float32 and float64
//
// The kernels compute exactly one time step for one layer over flat
// row-major buffers: cell and hidden states are [batch, hidden], gate
// pre-activations are [batch, 4*hidden] packed in input/forget/output/cell
// order. Sequences shorter than the current time step are masked: the cell
// state copies through and the hidden output is zeroed, with the matching
// pass-through behavior in the backward pass.
//
// # Basic Usage
//
//	import "github.com/born-ml/recurrent/rnn"
//
//	func main() {
//	    step, err := rnn.NewStep[float32](batch, hidden)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // One forward time step; the caller threads c and h across time.
//	    c, h, err := step.Forward(t, cPrev, gates, seqLengths)
//
//	    // During training, walk time steps in reverse:
//	    cPrevDiff, gatesDiff, err := step.Backward(
//	        t, cPrev, gates, seqLengths, c, h, cDiff, hDiff)
//	}
//
// Multi-timestep and multi-layer orchestration, weight application, and
// gradient accumulation belong to the caller; see examples/bptt.
package rnn
