package hmm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/gui11aume/zerone/hmm"
)

func TestViterbi_ObviousTwoStatePath(t *testing.T) {
	Q := mat.NewDense(2, 2, []float64{
		0.99, 0.01,
		0.01, 0.99,
	})
	init := []float64{0.5, 0.5}
	// Strongly favors state 0 then state 1.
	prob := mat.NewDense(2, 2, []float64{
		0.999, 0.001,
		0.001, 0.999,
	})

	path, err := hmm.Viterbi([]int{2}, Q, init, prob, true)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, path)
}

func TestViterbi_BlockResetsIndependently(t *testing.T) {
	Q := mat.NewDense(2, 2, []float64{0.5, 0.5, 0.5, 0.5})
	init := []float64{0.9, 0.1}
	prob := mat.NewDense(2, 2, []float64{
		0.5, 0.5,
		0.5, 0.5,
	})
	path, err := hmm.Viterbi([]int{1, 1}, Q, init, prob, true)
	require.NoError(t, err)
	assert.Equal(t, 0, path[0])
	assert.Equal(t, 0, path[1])
}

func TestViterbi_RejectsInvalidQ(t *testing.T) {
	Q := mat.NewDense(2, 2, []float64{-0.1, 1.1, 0.5, 0.5})
	init := []float64{0.5, 0.5}
	prob := mat.NewDense(1, 2, []float64{0.5, 0.5})
	_, err := hmm.Viterbi([]int{1}, Q, init, prob, true)
	assert.ErrorIs(t, err, hmm.ErrInvalidParameter)
}

func TestViterbi_RejectsBadBlockSizes(t *testing.T) {
	Q := mat.NewDense(2, 2, []float64{0.5, 0.5, 0.5, 0.5})
	init := []float64{0.5, 0.5}
	prob := mat.NewDense(2, 2, make([]float64, 4))
	_, err := hmm.Viterbi([]int{3}, Q, init, prob, true)
	assert.ErrorIs(t, err, hmm.ErrBlockSize)
}
