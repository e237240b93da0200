// Package ingest parses the tab-separated count files the hmm package's
// core does not read itself. It is an external collaborator in the sense
// of zerone's original design: it hands the core a segmented integer count
// matrix and block sizes, and knows nothing about emission models or
// inference.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrEmptyFile is returned when the input has no header line.
var ErrEmptyFile = errors.New("ingest: empty input")

// NA is the literal token that encodes a missing count.
const NA = "NA"

// Result is the segmented count matrix an hmm.Trainer or hmm.Viterbi call
// consumes directly: Y's rows are observations, Sizes partitions them into
// independent blocks in file order.
type Result struct {
	Y     [][]int
	Sizes []int
}

// Load reads a tab-separated file: one header line (discarded), then one
// row per observation. The first column is a block-label string; a run of
// equal consecutive labels forms one block (blocks need not be contiguous
// by label value — only runs of equal labels matter). The remaining
// columns are integer counts, with the literal "NA" decoded as -1.
func Load(r io.Reader) (*Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return nil, ErrEmptyFile
	}

	res := &Result{}
	var lastLabel string
	haveLabel := false
	lineNo := 1

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("ingest: line %d: expected a label column and at least one count column", lineNo)
		}

		label := fields[0]
		row := make([]int, len(fields)-1)
		for i, f := range fields[1:] {
			if f == NA {
				row[i] = -1
				continue
			}
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("ingest: line %d: column %d: %w", lineNo, i+1, err)
			}
			row[i] = v
		}
		res.Y = append(res.Y, row)

		if !haveLabel {
			haveLabel = true
			lastLabel = label
			res.Sizes = append(res.Sizes, 1)
			continue
		}
		if label == lastLabel {
			res.Sizes[len(res.Sizes)-1]++
		} else {
			res.Sizes = append(res.Sizes, 1)
			lastLabel = label
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Tracks returns the number of count columns (Y's column count), the
// control column included.
func (res *Result) Tracks() int {
	if len(res.Y) == 0 {
		return 0
	}
	return len(res.Y[0])
}
