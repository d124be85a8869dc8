// Package dataset defines simulated trial records and the six builders that produce them.
//
// Each builder owns a baseline table keyed by categorical labels and a trial
// count. Build iterates the Cartesian product of its label sets and trial
// indices, drawing noise around each baseline from a shared randsrc.Source.
// Builders are pure apart from the draws: the same config and the same stream
// position always yield the same dataset.
//
// Record counts are part of the contract. Expected returns the product of the
// label-set sizes and the trial count, and the manifest declares exactly that
// number.
package dataset
