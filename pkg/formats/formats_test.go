package formats

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/colkit/pkg/column"
	"github.com/ajitpratap0/colkit/pkg/columnar"
	"github.com/ajitpratap0/colkit/pkg/errors"
)

func mustColumn(t *testing.T, data any) *column.Column {
	t.Helper()
	c, err := column.FromData(data)
	require.NoError(t, err)
	return c
}

func rows(t *testing.T, c *column.Column) []any {
	t.Helper()
	out, err := c.Rows()
	require.NoError(t, err)
	return out
}

func TestForPath(t *testing.T) {
	tests := map[string]Format{
		"a.arrow":   Arrow,
		"a.FEATHER": Arrow,
		"b.parquet": Parquet,
		"c.avro":    Avro,
	}
	for path, want := range tests {
		got, ok := ForPath(path)
		assert.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}
	_, ok := ForPath("d.csv")
	assert.False(t, ok)
}

func TestFilesKeepValues(t *testing.T) {
	sources := map[string]any{
		"ints":    []int64{3, 1, 2},
		"floats":  []float64{0.5, 1.5},
		"bools":   []bool{true, false, true},
		"strings": []any{"a", nil, "c"},
		"empty":   []int64{},
	}
	for _, ext := range []string{".arrow", ".parquet", ".avro"} {
		for name, data := range sources {
			t.Run(name+ext, func(t *testing.T) {
				var src *column.Column
				if strs, ok := data.([]any); ok {
					src = mustColumn(t, columnar.NewSeries("", strs))
				} else {
					src = mustColumn(t, data)
				}
				path := filepath.Join(t.TempDir(), name+ext)
				require.NoError(t, WriteFile(path, src, nil))

				got, err := ReadFile(context.Background(), path, "")
				require.NoError(t, err)
				assert.Equal(t, src.Kind(), got.Kind())
				assert.Equal(t, src.Len(), got.Len())
				if src.Len() > 0 {
					assert.Equal(t, rows(t, src), rows(t, got))
				}
			})
		}
	}
}

func TestCompression(t *testing.T) {
	src := mustColumn(t, []int64{1, 2, 3, 4})
	cases := []struct {
		format Format
		name   string
	}{
		{Arrow, "zstd"},
		{Arrow, "lz4"},
		{Parquet, "snappy"},
		{Parquet, "zstd"},
		{Parquet, "gzip"},
		{Avro, "deflate"},
		{Avro, "snappy"},
	}
	for _, tc := range cases {
		t.Run(string(tc.format)+"/"+tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := &WriterConfig{Format: tc.format, Field: "x", Compression: tc.name, BatchSize: 2}
			require.NoError(t, Write(&buf, src, cfg))

			got, err := Decode(context.Background(), buf.Bytes(), tc.format, "x")
			require.NoError(t, err)
			assert.Equal(t, []any{int64(1), int64(2), int64(3), int64(4)}, rows(t, got))
		})
	}

	err := Write(&bytes.Buffer{}, src, &WriterConfig{Format: Arrow, Compression: "snappy", BatchSize: 1})
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	err = Write(&bytes.Buffer{}, src, &WriterConfig{Format: Avro, Compression: "zstd", BatchSize: 1})
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestFieldSelection(t *testing.T) {
	var buf bytes.Buffer
	cfg := &WriterConfig{Format: Parquet, Field: "label", BatchSize: 10}
	require.NoError(t, Write(&buf, mustColumn(t, []bool{true}), cfg))

	_, err := Decode(context.Background(), buf.Bytes(), Parquet, "missing")
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidIndex))

	got, err := Decode(context.Background(), buf.Bytes(), Parquet, "label")
	require.NoError(t, err)
	assert.Equal(t, []any{true}, rows(t, got))
}

func TestWriteErrors(t *testing.T) {
	tensor := mustColumn(t, [][]float64{{1, 2}, {3, 4}})
	err := Write(&bytes.Buffer{}, tensor, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotSupported))

	src := mustColumn(t, []int64{1})
	err = Write(&bytes.Buffer{}, src, &WriterConfig{Format: "orc", BatchSize: 1})
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	err = WriteFile(filepath.Join(t.TempDir(), "out.csv"), src, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestReadErrors(t *testing.T) {
	_, err := ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing.arrow"), "")
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))

	_, err = Decode(context.Background(), []byte("not arrow"), Arrow, "")
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}
