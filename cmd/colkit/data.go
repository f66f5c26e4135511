package main

import (
	"bytes"
	"context"
	"os"

	"github.com/ajitpratap0/colkit/pkg/cells"
	"github.com/ajitpratap0/colkit/pkg/column"
	"github.com/ajitpratap0/colkit/pkg/compression"
	"github.com/ajitpratap0/colkit/pkg/errors"
	"github.com/ajitpratap0/colkit/pkg/formats"
	"github.com/ajitpratap0/colkit/pkg/formatter"
	"github.com/ajitpratap0/colkit/pkg/json"
	"github.com/ajitpratap0/colkit/pkg/provenance"
)

// load reads a column file. Arrow, Parquet and Avro files are picked by
// extension; anything else must hold a JSON array, optionally compressed
// (data.json.zst).
func (a *app) load(ctx context.Context, path string, reg *provenance.Registry) (*column.Column, error) {
	opts := []column.Option{
		column.WithFormatter(&formatter.Basic{
			MaxWidth:  a.cfg.Display.MaxWidth,
			Precision: a.cfg.Display.Precision,
		}),
		column.WithProvenance(reg),
	}
	if _, ok := formats.ForPath(path); ok {
		return formats.ReadFile(ctx, path, a.v.GetString("field"), opts...)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is a command argument
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read data file").
			WithDetail("path", path)
	}

	if data, err = compression.Decompress(compression.ForPath(path), data); err != nil {
		return nil, err
	}
	var raw []any
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeUnsupportedDataType, "data file must hold a JSON array").
			WithDetail("path", path)
	}

	values := make([]any, len(raw))
	for i, v := range raw {
		values[i] = normalize(v)
	}
	promoteFloats(values)
	if values, err = a.toCells(values); err != nil {
		return nil, err
	}

	return column.FromData(values, opts...)
}

// toCells turns string rows into lazy cells when --cells is set
func (a *app) toCells(values []any) ([]any, error) {
	kind := a.v.GetString("cells.kind")
	if kind == "" {
		return values, nil
	}
	if kind != "file" && kind != "image" {
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown cell kind %q", kind)
	}

	loader, err := cells.NewLoader(a.cfg.Cells.Root, a.cfg.Cells.CacheBytes)
	if err != nil {
		return nil, err
	}
	a.loader = loader
	out := make([]any, len(values))
	for i, v := range values {
		path, ok := v.(string)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeUnsupportedDataType, "row %d is %T, cells need a path", i, v).
				WithDetail("row", i)
		}
		if kind == "image" {
			out[i] = cells.NewImageCell(path, loader)
		} else {
			out[i] = cells.NewFileCell(path, loader)
		}
	}
	return out, nil
}

// normalize maps decoded JSON to column values: integral numbers to int64,
// other numbers to float64 and arrays of numbers to float rows
func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case []any:
		row := make([]float64, len(x))
		for i, e := range x {
			n, ok := e.(json.Number)
			if !ok {
				return x
			}
			f, err := n.Float64()
			if err != nil {
				return x
			}
			row[i] = f
		}
		return row
	}
	return v
}

// promoteFloats converts integers to float64 when the rows mix integers and
// floats
func promoteFloats(values []any) {
	hasFloat := false
	for _, v := range values {
		switch v.(type) {
		case int64:
		case float64:
			hasFloat = true
		default:
			return
		}
	}
	if !hasFloat {
		return
	}
	for i, v := range values {
		if n, ok := v.(int64); ok {
			values[i] = float64(n)
		}
	}
}
