package hmm_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/gui11aume/zerone/hmm"
)

func newZ(a, pi float64, p ...[]float64) *hmm.ZeroInflated {
	m := len(p)
	cols := len(p[0])
	mx := mat.NewDense(m, cols, nil)
	for i, row := range p {
		copy(mx.RawRowView(i), row)
	}
	return &hmm.ZeroInflated{A: a, Pi: pi, P: mx}
}

func TestEvaluateEmissions_AllZeroRow(t *testing.T) {
	z := newZ(2, 0.3, []float64{0.5, 0.5})
	y := [][]int{{0, 0}}
	idx, _ := hmm.BuildIndex(y)

	pem, err := hmm.EvaluateEmissions(y, idx, z, hmm.Lin, nil, false)
	require.NoError(t, err)

	want := 0.3*math.Pow(0.5, 2) + 0.7
	assert.InDelta(t, want, pem.At(0, 0), 1e-12)
}

func TestEvaluateEmissions_NARowIsAllNaN(t *testing.T) {
	z := newZ(2, 0.3, []float64{0.5, 0.5}, []float64{0.4, 0.6})
	y := [][]int{{-1, 3}}
	idx, _ := hmm.BuildIndex(y)

	pem, err := hmm.EvaluateEmissions(y, idx, z, hmm.Log, nil, false)
	require.NoError(t, err)
	for j := 0; j < 2; j++ {
		assert.True(t, math.IsNaN(pem.At(0, j)))
	}
}

func TestEvaluateEmissions_DuplicateRowsShareResult(t *testing.T) {
	z := newZ(2, 0.3, []float64{0.5, 0.5}, []float64{0.4, 0.6})
	y := [][]int{{3, 4}, {3, 4}}
	idx, _ := hmm.BuildIndex(y)

	pem, err := hmm.EvaluateEmissions(y, idx, z, hmm.Log, nil, false)
	require.NoError(t, err)
	assert.Equal(t, pem.RawRowView(0), pem.RawRowView(1))
}

func TestEvaluateEmissions_LinPreferredFallsBackToLog(t *testing.T) {
	// A huge count makes the linear value underflow to zero for every
	// state, so LinPreferred must fall back to log space for that row.
	z := newZ(2, 0, []float64{0.01, 0.99}, []float64{0.02, 0.98})
	y := [][]int{{0, 100000}}
	idx, _ := hmm.BuildIndex(y)

	lin, err := hmm.EvaluateEmissions(y, idx, z, hmm.Lin, nil, false)
	require.NoError(t, err)
	for j := 0; j < 2; j++ {
		assert.Equal(t, 0.0, lin.At(0, j))
	}

	mixed, err := hmm.EvaluateEmissions(y, idx, z, hmm.LinPreferred, nil, false)
	require.NoError(t, err)
	for j := 0; j < 2; j++ {
		assert.Less(t, mixed.At(0, j), 0.0)
	}
}

func TestEvaluateEmissions_RejectsBadDispersionOrWeight(t *testing.T) {
	z := newZ(0, 0.5, []float64{0.5, 0.5})
	_, err := hmm.EvaluateEmissions([][]int{{0, 0}}, []int{0}, z, hmm.Log, nil, false)
	assert.ErrorIs(t, err, hmm.ErrInvalidParameter)

	z2 := newZ(1, 1.5, []float64{0.5, 0.5})
	_, err = hmm.EvaluateEmissions([][]int{{0, 0}}, []int{0}, z2, hmm.Log, nil, false)
	assert.ErrorIs(t, err, hmm.ErrInvalidParameter)
}
