package ingest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gui11aume/zerone/ingest"
)

func TestLoad_GroupsConsecutiveEqualLabelsIntoBlocks(t *testing.T) {
	input := "label\tcontrol\ttrack1\n" +
		"chr1\t10\t2\n" +
		"chr1\t12\t3\n" +
		"chr2\t0\t0\n" +
		"chr2\t1\t1\n" +
		"chr2\t2\t2\n"

	res, err := ingest.Load(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, [][]int{
		{10, 2},
		{12, 3},
		{0, 0},
		{1, 1},
		{2, 2},
	}, res.Y)
	assert.Equal(t, []int{2, 3}, res.Sizes)
	assert.Equal(t, 2, res.Tracks())
}

func TestLoad_NATokenBecomesNegativeOne(t *testing.T) {
	input := "label\tcontrol\n" +
		"a\tNA\n" +
		"a\t5\n"
	res, err := ingest.Load(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, -1, res.Y[0][0])
	assert.Equal(t, 5, res.Y[1][0])
}

func TestLoad_RelabelingStartsNewBlockEvenIfLabelRepeatsLater(t *testing.T) {
	input := "label\tc\n" +
		"a\t1\n" +
		"b\t1\n" +
		"a\t1\n"
	res, err := ingest.Load(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1}, res.Sizes)
}

func TestLoad_EmptyInputIsAnError(t *testing.T) {
	_, err := ingest.Load(strings.NewReader(""))
	assert.ErrorIs(t, err, ingest.ErrEmptyFile)
}

func TestLoad_MalformedLineIsRejected(t *testing.T) {
	input := "label\tc\n" +
		"onlylabel\n"
	_, err := ingest.Load(strings.NewReader(input))
	require.Error(t, err)
}

func TestLoad_NonIntegerCountIsRejected(t *testing.T) {
	input := "label\tc\n" +
		"a\tnotanumber\n"
	_, err := ingest.Load(strings.NewReader(input))
	require.Error(t, err)
}

func TestLoad_BlankLinesAreSkipped(t *testing.T) {
	input := "label\tc\n" +
		"a\t1\n" +
		"\n" +
		"a\t2\n"
	res, err := ingest.Load(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1}, {2}}, res.Y)
	assert.Equal(t, []int{2}, res.Sizes)
}

func TestResult_TracksOnEmptyResult(t *testing.T) {
	res := &ingest.Result{}
	assert.Equal(t, 0, res.Tracks())
}
