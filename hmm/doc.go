/*
Package hmm implements the inference core of a hidden Markov model tailored
to discrete multivariate count data — ChIP-seq-style read-count profiles
across multiple experimental tracks. It fits a zero-inflated negative
multinomial (ZINM) emission model to a block-segmented count matrix, then
decodes state posteriors (forward-backward) and the most likely state path
(Viterbi).

The package is organized around four cooperating pieces: an emission
evaluator (emission.go), a forward/backward smoother (forward.go,
backward.go, driver.go), a Viterbi decoder (viterbi.go) and a Baum-Welch
trainer (baumwelch.go) that alternates between the two. A row-deduplication
index (index.go) lets the evaluator skip repeated observations.

This package does not read input files, run the initial ZINB fit of the
control track, compress block assignments into a histogram, or format
output — those are external collaborators. See package ingest and cmd/zerone
for a minimal example of wiring them around this core.
*/
package hmm
