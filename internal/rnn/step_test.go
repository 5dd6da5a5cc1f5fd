package rnn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/recurrent/internal/parallel"
)

func TestNewStep_InvalidDimensions(t *testing.T) {
	_, err := NewStep[float32](0, 8)
	assert.Error(t, err)

	_, err = NewStep[float32](4, -1)
	assert.Error(t, err)

	step, err := NewStep[float32](4, 8)
	require.NoError(t, err)
	assert.Equal(t, 4, step.Batch())
	assert.Equal(t, 8, step.Hidden())
}

func TestStep_Forward_ContractViolations(t *testing.T) {
	step, err := NewStep[float64](2, 3)
	require.NoError(t, err)

	cPrev := make([]float64, 2*3)
	gates := make([]float64, 2*4*3)
	seqLengths := []int32{1, 1}

	tests := []struct {
		name string
		call func() error
	}{
		{"negative time step", func() error {
			_, _, err := step.Forward(-1, cPrev, gates, seqLengths)
			return err
		}},
		{"cPrev too short", func() error {
			_, _, err := step.Forward(0, cPrev[:5], gates, seqLengths)
			return err
		}},
		{"gate width not 4x hidden", func() error {
			_, _, err := step.Forward(0, cPrev, gates[:2*3*3], seqLengths)
			return err
		}},
		{"seqLengths wrong length", func() error {
			_, _, err := step.Forward(0, cPrev, gates, seqLengths[:1])
			return err
		}},
		{"negative sequence length", func() error {
			_, _, err := step.Forward(0, cPrev, gates, []int32{1, -2})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.call())
		})
	}
}

func TestStep_Backward_ContractViolations(t *testing.T) {
	step, err := NewStep[float64](1, 2)
	require.NoError(t, err)

	state := make([]float64, 2)
	gates := make([]float64, 8)
	seqLengths := []int32{1}

	_, _, err = step.Backward(0, state, gates, seqLengths, state[:1], state, state, state)
	assert.Error(t, err, "short c buffer")

	_, _, err = step.Backward(0, state, gates, seqLengths, state, state, state, state[:1])
	assert.Error(t, err, "short hDiff buffer")
}

// TestStep_MatchesKernel: Step with parallel dispatch forced on produces the
// same outputs as the sequential kernels.
func TestStep_MatchesKernel(t *testing.T) {
	const (
		n = 8
		d = 16
	)
	rng := rand.New(rand.NewSource(9))

	step, err := NewStep[float64](n, d)
	require.NoError(t, err)
	step.SetParallelism(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1})

	cPrev := randSlice[float64](n*d, rng)
	gates := randSlice[float64](n*4*d, rng)
	seqLengths := []int32{0, 1, 2, 3, 4, 5, 6, 7}

	wantC := make([]float64, n*d)
	wantH := make([]float64, n*d)
	LSTMUnit(n, d, 2, cPrev, gates, seqLengths, wantC, wantH)

	c, h, err := step.Forward(2, cPrev, gates, seqLengths)
	require.NoError(t, err)
	require.True(t, floats.Equal(wantC, c))
	require.True(t, floats.Equal(wantH, h))

	cDiff := randSlice[float64](n*d, rng)
	hDiff := randSlice[float64](n*d, rng)

	wantCPrevDiff := make([]float64, n*d)
	wantGatesDiff := make([]float64, n*4*d)
	LSTMUnitGradient(n, d, 2, cPrev, gates, seqLengths, wantC, wantH, cDiff, hDiff, wantCPrevDiff, wantGatesDiff)

	cPrevDiff, gatesDiff, err := step.Backward(2, cPrev, gates, seqLengths, c, h, cDiff, hDiff)
	require.NoError(t, err)
	require.True(t, floats.Equal(wantCPrevDiff, cPrevDiff))
	require.True(t, floats.Equal(wantGatesDiff, gatesDiff))
}

// TestStep_SequentialConfig: disabling parallelism gives identical results.
func TestStep_SequentialConfig(t *testing.T) {
	const (
		n = 2
		d = 4
	)
	rng := rand.New(rand.NewSource(10))

	cPrev := randSlice[float32](n*d, rng)
	gates := randSlice[float32](n*4*d, rng)
	seqLengths := []int32{3, 1}

	par, err := NewStep[float32](n, d)
	require.NoError(t, err)
	par.SetParallelism(parallel.Config{Enabled: true, NumWorkers: 2, MinChunkSize: 1})

	seq, err := NewStep[float32](n, d)
	require.NoError(t, err)
	seq.SetParallelism(parallel.Config{Enabled: false})

	cPar, hPar, err := par.Forward(0, cPrev, gates, seqLengths)
	require.NoError(t, err)
	cSeq, hSeq, err := seq.Forward(0, cPrev, gates, seqLengths)
	require.NoError(t, err)

	assert.Equal(t, cSeq, cPar)
	assert.Equal(t, hSeq, hPar)
}
