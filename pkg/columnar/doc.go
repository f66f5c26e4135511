// Package columnar implements the storage backends behind a column and the
// collation engine that folds per-row values back into a backend.
//
// # Backends
//
// Every backend satisfies Backend (Kind, Len, Cell, SetCell). Optional
// capabilities are expressed as separate interfaces that callers check for:
//
//   - Taker: gather rows in one step
//   - Sorter: stable argsort by value
//   - Appender: concatenate two backends of the same kind
//   - Equaler: compare by value
//   - Arrower: export to an Arrow array
//
// The built-in kinds are:
//
//	KindList     List            arbitrary values
//	KindNumeric  Numeric[T]      int64, float64 or bool
//	KindTensor   Tensor          fixed-width float vectors in a gonum matrix
//	KindSeries   Series          labeled values, used for text
//	KindCell     CellColumn      deferred cells.Cell handles
//
// # Collation
//
// Collate inspects the first value and builds the matching backend:
//
//	b, err := columnar.Collate([]any{int64(1), int64(2), int64(3)})
//	// b is a *Numeric[int64]
//
// Collation is strict. A value that does not fit the representation chosen
// from the first value fails with a heterogeneous_batch error instead of
// being coerced. CollateAs skips inference and builds a given kind.
package columnar
