// Package rnn implements batched LSTM cell kernels for recurrent networks.
package rnn

import (
	"math"

	"github.com/born-ml/recurrent/internal/tensor"
)

// sigmoid computes the logistic function 1 / (1 + exp(-x)).
func sigmoid[T tensor.Float](x T) T {
	return T(1.0 / (1.0 + math.Exp(float64(-x))))
}

// tanh computes the hyperbolic tangent through the same exponential
// primitive as sigmoid: tanh(x) = 2*sigmoid(2x) - 1.
func tanh[T tensor.Float](x T) T {
	return 2*sigmoid(2*x) - 1
}

// LSTMUnit computes one time step of an LSTM cell update for a batch of
// independent sequences of possibly different lengths.
//
// Layout (all buffers row-major, caller-allocated):
//   - cPrev: [n, d] previous cell state.
//   - gates: [n, 4*d] gate pre-activations, packed per row as contiguous
//     blocks of d in fixed order: input (i), forget (f), output (o),
//     cell candidate (g).
//   - seqLengths: [n] sequence lengths; row is active iff t < seqLengths[row].
//   - c, h: [n, d] new cell state and hidden state, written in place.
//
// Active rows compute the standard cell update c = f*cPrev + i*g and
// h = o*tanh(c). Rows whose sequence has already ended copy the cell state
// through unchanged and zero the hidden output, so padded time steps
// contribute no hidden signal downstream while the last valid cell state
// stays readable at any later step.
//
// The kernel allocates nothing and checks nothing; the 4*d gate layout and
// buffer sizing are the caller's contract (see Step). c may alias cPrev:
// each output element depends only on same-index inputs, read before written.
func LSTMUnit[T tensor.Float](n, d, t int, cPrev, gates []T, seqLengths []int32, c, h []T) {
	for row := 0; row < n; row++ {
		lstmUnitRow(row, d, t, cPrev, gates, seqLengths, c, h)
	}
}

// lstmUnitRow computes the forward update for one batch row.
func lstmUnitRow[T tensor.Float](row, d, t int, cPrev, gates []T, seqLengths []int32, c, h []T) {
	base := row * d
	gateBase := row * 4 * d
	valid := t < int(seqLengths[row])

	for j := 0; j < d; j++ {
		if !valid {
			h[base+j] = 0
			c[base+j] = cPrev[base+j]
			continue
		}

		i := sigmoid(gates[gateBase+j])
		f := sigmoid(gates[gateBase+d+j])
		o := sigmoid(gates[gateBase+2*d+j])
		g := tanh(gates[gateBase+3*d+j])

		cell := f*cPrev[base+j] + i*g
		c[base+j] = cell
		h[base+j] = o * tanh(cell)
	}
}

// LSTMUnitGradient computes the backward pass of LSTMUnit for one time step,
// producing the gradient w.r.t. the previous cell state and the gradient
// w.r.t. the packed gate pre-activations.
//
// Inputs are the forward call's cPrev, gates and seqLengths, the forward
// outputs c and h, and the incoming gradients cDiff (w.r.t. the new cell
// state) and hDiff (w.r.t. the new hidden state). Outputs cPrevDiff [n, d]
// and gatesDiff [n, 4*d] are written in place; gatesDiff uses the same
// i/f/o/g block packing as gates.
//
// Gate activations are recomputed from gates rather than cached by the
// forward pass; the cell value is read back from c so the hidden-path
// gradient matches the forward computation exactly. Rows masked out by
// seqLengths pass cDiff through to cPrevDiff unchanged and zero all four
// gate-gradient blocks, mirroring the forward copy-through.
func LSTMUnitGradient[T tensor.Float](
	n, d, t int,
	cPrev, gates []T,
	seqLengths []int32,
	c, h []T,
	cDiff, hDiff []T,
	cPrevDiff, gatesDiff []T,
) {
	_ = h // part of the boundary contract; the math needs only hDiff

	for row := 0; row < n; row++ {
		lstmUnitGradientRow(row, d, t, cPrev, gates, seqLengths, c, cDiff, hDiff, cPrevDiff, gatesDiff)
	}
}

// lstmUnitGradientRow computes the backward update for one batch row.
func lstmUnitGradientRow[T tensor.Float](
	row, d, t int,
	cPrev, gates []T,
	seqLengths []int32,
	c []T,
	cDiff, hDiff []T,
	cPrevDiff, gatesDiff []T,
) {
	base := row * d
	gateBase := row * 4 * d
	valid := t < int(seqLengths[row])

	for j := 0; j < d; j++ {
		if !valid {
			cPrevDiff[base+j] = cDiff[base+j]
			gatesDiff[gateBase+j] = 0
			gatesDiff[gateBase+d+j] = 0
			gatesDiff[gateBase+2*d+j] = 0
			gatesDiff[gateBase+3*d+j] = 0
			continue
		}

		i := sigmoid(gates[gateBase+j])
		f := sigmoid(gates[gateBase+d+j])
		o := sigmoid(gates[gateBase+2*d+j])
		g := tanh(gates[gateBase+3*d+j])
		tanhC := tanh(c[base+j])

		// Gradient arriving into the cell state: the direct path plus the
		// hidden path back through h = o * tanh(c).
		cTerm := cDiff[base+j] + hDiff[base+j]*o*(1-tanhC*tanhC)

		cPrevDiff[base+j] = cTerm * f
		gatesDiff[gateBase+j] = cTerm * g * i * (1 - i)
		gatesDiff[gateBase+d+j] = cTerm * cPrev[base+j] * f * (1 - f)
		gatesDiff[gateBase+2*d+j] = hDiff[base+j] * tanhC * o * (1 - o)
		gatesDiff[gateBase+3*d+j] = cTerm * i * (1 - g*g)
	}
}
