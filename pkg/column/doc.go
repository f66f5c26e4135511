// Package column provides Column, a single row-oriented contract over the
// backends in package columnar.
//
// A column is read by position with Get, which accepts any expression
// package index understands. Scalar indices return one cell; everything else
// returns a new, independent column of the same kind:
//
//	col, _ := column.FromData([]int64{10, 20, 30, 40, 50})
//	v, _ := col.At(-1)                     // int64(50)
//	sub, _ := col.Select(index.Range(1, 3), true)
//
// Reads through At or Mz load deferred cells; Lz and Loc leave them as
// handles. Map, Filter, Sample and Batch build on these reads, and every
// derived column is recorded in the provenance registry given with
// WithProvenance.
package column
