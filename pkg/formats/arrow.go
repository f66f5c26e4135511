package formats

import (
	"bytes"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/colkit/pkg/errors"
)

func writeArrow(w io.Writer, arr arrow.Array, config *WriterConfig, mem memory.Allocator) error {
	schema := singleField(config.Field, arr)
	opts := []ipc.Option{ipc.WithSchema(schema), ipc.WithAllocator(mem)}
	switch config.Compression {
	case "", "none":
	case "lz4":
		opts = append(opts, ipc.WithLZ4())
	case "zstd":
		opts = append(opts, ipc.WithZstd())
	default:
		return unsupportedCompression(Arrow, config.Compression)
	}

	fw, err := ipc.NewFileWriter(w, opts...)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create Arrow writer")
	}
	for off := 0; ; off += config.BatchSize {
		end := min(off+config.BatchSize, arr.Len())
		slice := array.NewSlice(arr, int64(off), int64(end))
		rec := array.NewRecord(schema, []arrow.Array{slice}, int64(end-off))
		err := fw.Write(rec)
		rec.Release()
		slice.Release()
		if err != nil {
			_ = fw.Close()
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write Arrow record batch")
		}
		if end >= arr.Len() {
			break
		}
	}
	if err := fw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close Arrow writer")
	}
	return nil
}

func readArrow(data []byte, field string, mem memory.Allocator) (arrow.Array, error) {
	r, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(mem))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create Arrow reader")
	}
	defer r.Close()

	idx, err := fieldIndex(r.Schema(), field)
	if err != nil {
		return nil, err
	}
	chunks := make([]arrow.Array, 0, r.NumRecords())
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		if err != nil {
			for _, c := range chunks {
				c.Release()
			}
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read Arrow record batch").WithDetail("batch", i)
		}
		// Records are only valid until the next call
		col := rec.Column(idx)
		col.Retain()
		chunks = append(chunks, col)
	}
	return concat(chunks, r.Schema().Field(idx).Type, mem)
}
