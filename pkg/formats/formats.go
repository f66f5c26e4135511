// Package formats reads and writes columns as Arrow IPC, Parquet and Avro
// files. Each file holds one field per column; readers pick a field by name.
package formats

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/colkit/pkg/column"
	"github.com/ajitpratap0/colkit/pkg/errors"
	"github.com/ajitpratap0/colkit/pkg/mmap"
)

// Format represents a columnar storage format
type Format string

const (
	// Arrow is the Arrow IPC file format
	Arrow Format = "arrow"
	// Parquet is Apache Parquet format
	Parquet Format = "parquet"
	// Avro is an Avro object container file
	Avro Format = "avro"
)

// DefaultField names the field a column is written under
const DefaultField = "value"

// ForPath picks a format from the file extension
func ForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".arrow", ".ipc", ".feather":
		return Arrow, true
	case ".parquet", ".pq":
		return Parquet, true
	case ".avro":
		return Avro, true
	}
	return "", false
}

// WriterConfig configures column writers
type WriterConfig struct {
	Format Format
	// Field names the single field written
	Field string
	// Compression is none, snappy, zstd, gzip or lz4; each format accepts
	// a subset
	Compression string
	// BatchSize bounds the rows per Avro block and Parquet row group
	BatchSize int
}

// DefaultWriterConfig returns default writer configuration
func DefaultWriterConfig() *WriterConfig {
	return &WriterConfig{
		Format:      Parquet,
		Field:       DefaultField,
		Compression: "none",
		BatchSize:   10000,
	}
}

// Write encodes c to w. Columns whose backend cannot export to Arrow fail
// with NotSupported.
func Write(w io.Writer, c *column.Column, config *WriterConfig) error {
	if config == nil {
		config = DefaultWriterConfig()
	}
	if config.Field == "" {
		config.Field = DefaultField
	}
	if config.BatchSize < 1 {
		return errors.Newf(errors.ErrorTypeConfig, "batch size must be at least 1, got %d", config.BatchSize)
	}

	mem := memory.NewGoAllocator()
	arr, err := c.ToArrow(mem)
	if err != nil {
		return err
	}
	defer arr.Release()

	switch config.Format {
	case Arrow:
		return writeArrow(w, arr, config, mem)
	case Parquet:
		return writeParquet(w, arr, config, mem)
	case Avro:
		return writeAvro(w, arr, config)
	}
	return unknownFormat(config.Format)
}

// WriteFile writes c to path, picking the format from the extension when
// config.Format is empty
func WriteFile(path string, c *column.Column, config *WriterConfig) error {
	cfg := DefaultWriterConfig()
	if config != nil {
		*cfg = *config
	}
	if cfg.Format == "" {
		f, ok := ForPath(path)
		if !ok {
			return errors.Newf(errors.ErrorTypeConfig, "cannot tell format of %s", path).WithDetail("path", path)
		}
		cfg.Format = f
	}

	f, err := os.Create(path) //nolint:gosec // G304: caller chooses the file
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create file").WithDetail("path", path)
	}
	werr := Write(f, c, cfg)
	// Parquet closes its sink
	if cerr := f.Close(); cerr != nil && werr == nil && !stderrors.Is(cerr, os.ErrClosed) {
		werr = errors.Wrap(cerr, errors.ErrorTypeFile, "failed to close file").WithDetail("path", path)
	}
	if werr != nil {
		_ = os.Remove(path)
	}
	return werr
}

// Decode reads field from data. An empty field selects the first one.
func Decode(ctx context.Context, data []byte, format Format, field string, opts ...column.Option) (*column.Column, error) {
	mem := memory.NewGoAllocator()
	switch format {
	case Arrow, Parquet:
		var (
			arr arrow.Array
			err error
		)
		if format == Arrow {
			arr, err = readArrow(data, field, mem)
		} else {
			arr, err = readParquet(ctx, data, field, mem)
		}
		if err != nil {
			return nil, err
		}
		defer arr.Release()
		return column.FromData(arr, opts...)
	case Avro:
		backend, err := readAvro(data, field)
		if err != nil {
			return nil, err
		}
		return column.FromData(backend, opts...)
	}
	return nil, unknownFormat(format)
}

// ReadFile maps path and decodes field from it
func ReadFile(ctx context.Context, path, field string, opts ...column.Option) (*column.Column, error) {
	format, ok := ForPath(path)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeConfig, "cannot tell format of %s", path).WithDetail("path", path)
	}
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	return Decode(ctx, m.Bytes(), format, field, opts...)
}

func unknownFormat(f Format) error {
	return errors.Newf(errors.ErrorTypeConfig, "unknown format %q", f)
}

func unsupportedCompression(f Format, name string) error {
	return errors.Newf(errors.ErrorTypeConfig, "%s does not support %s compression", f, name).
		WithDetail("format", string(f)).
		WithDetail("compression", name)
}

// fieldIndex finds field in schema. An empty name selects the first field.
func fieldIndex(schema *arrow.Schema, field string) (int, error) {
	if schema.NumFields() == 0 {
		return 0, errors.New(errors.ErrorTypeUnsupportedDataType, "file has no fields")
	}
	if field == "" {
		return 0, nil
	}
	idx := schema.FieldIndices(field)
	if len(idx) == 0 {
		return 0, errors.Newf(errors.ErrorTypeInvalidIndex, "no field named %q", field).WithDetail("field", field)
	}
	return idx[0], nil
}

// concat joins chunks into one array and releases them
func concat(chunks []arrow.Array, dt arrow.DataType, mem memory.Allocator) (arrow.Array, error) {
	defer func() {
		for _, c := range chunks {
			c.Release()
		}
	}()
	if len(chunks) == 0 {
		b := array.NewBuilder(mem, dt)
		defer b.Release()
		return b.NewArray(), nil
	}
	arr, err := array.Concatenate(chunks, mem)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to join record batches")
	}
	return arr, nil
}

func singleField(name string, arr arrow.Array) *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{{Name: name, Type: arr.DataType(), Nullable: true}}, nil)
}
