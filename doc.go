// Package colkit provides columns for machine learning datasets: a single
// abstraction over numeric arrays, tensors, labeled series, generic lists
// and lazily loaded file or image cells.
//
// # Architecture
//
// A column pairs a backend (package columnar) with display and provenance
// state (package column). Everything else hangs off that pair:
//
//   - index translates ints, slices, masks and labels into row positions
//   - batchfn inspects user functions once and applies them to chunks
//   - columnar collates row values back into the tightest backend
//   - sample draws rows with or without replacement
//   - provenance records which operation produced which column
//   - cells defers file and image reads until a row is materialized
//   - formats reads and writes columns as Arrow IPC, Parquet and Avro
//
// # Quick Start
//
//	col, err := column.FromData([]int64{1, 2, 3, 4})
//	if err != nil {
//	    return err
//	}
//	squares, err := col.Map(func(v int64) int64 { return v * v })
//	if err != nil {
//	    return err
//	}
//	even, err := squares.Filter(func(v int64) bool { return v%2 == 0 })
//
// # Indexing
//
// Get returns a single value for a scalar index and a new column otherwise.
// Lz and Mz choose whether cells in the result stay deferred or are loaded
// eagerly; Loc resolves series labels instead of positions.
//
// # Command Line
//
// cmd/colkit prints, samples, describes and converts column files:
//
//	colkit head data.json -n 5
//	colkit sample data.parquet -n 3 --seed 42
//	colkit convert data.json data.arrow --compression zstd
//
// Configuration comes from a YAML file (--config), COLKIT_ environment
// variables and flags, in increasing precedence.
package colkit
