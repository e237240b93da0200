package hmm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/gui11aume/zerone/hmm"
)

func TestRunBlocks_ResetsStateAtBoundaries(t *testing.T) {
	Q := mat.NewDense(2, 2, []float64{0.9, 0.1, 0.2, 0.8})
	init := []float64{1, 0}
	pem := mat.NewDense(4, 2, []float64{
		0.5, 0.5,
		0.5, 0.5,
		0.5, 0.5,
		0.5, 0.5,
	})

	phi, Tsum, loglik, err := hmm.RunBlocks([]int{2, 2}, Q, init, pem)
	require.NoError(t, err)
	assert.NotNil(t, phi)
	assert.NotNil(t, Tsum)
	assert.False(t, loglik != loglik) // not NaN

	// Row 2 starts a fresh block, so its alpha must equal row 0's
	// (both seeded directly from init with an identical emission row).
	assert.InDelta(t, pem.At(0, 0), pem.At(2, 0), 1e-9)
	assert.InDelta(t, pem.At(0, 1), pem.At(2, 1), 1e-9)
}

func TestRunBlocks_RejectsMismatchedSizes(t *testing.T) {
	Q := mat.NewDense(2, 2, []float64{0.5, 0.5, 0.5, 0.5})
	init := []float64{0.5, 0.5}
	pem := mat.NewDense(3, 2, make([]float64, 6))
	_, _, _, err := hmm.RunBlocks([]int{2, 2}, Q, init, pem)
	assert.ErrorIs(t, err, hmm.ErrBlockSize)
}

func TestRunBlocks_RejectsNonPositiveBlockSize(t *testing.T) {
	Q := mat.NewDense(2, 2, []float64{0.5, 0.5, 0.5, 0.5})
	init := []float64{0.5, 0.5}
	pem := mat.NewDense(2, 2, make([]float64, 4))
	_, _, _, err := hmm.RunBlocks([]int{0, 2}, Q, init, pem)
	assert.ErrorIs(t, err, hmm.ErrBlockSize)
}
