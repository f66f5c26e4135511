package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ajitpratap0/colkit/pkg/column"
	"github.com/ajitpratap0/colkit/pkg/columnar"
	"github.com/ajitpratap0/colkit/pkg/compression"
	"github.com/ajitpratap0/colkit/pkg/errors"
	"github.com/ajitpratap0/colkit/pkg/formats"
	"github.com/ajitpratap0/colkit/pkg/json"
	"github.com/ajitpratap0/colkit/pkg/provenance"
	"github.com/ajitpratap0/colkit/pkg/sample"
)

func (a *app) headCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "head FILE",
		Short: "Print the first rows of a column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd, args[0], func(c *column.Column) (*column.Column, error) {
				return c.Head(n)
			})
		},
	}
	cmd.Flags().IntVarP(&n, "rows", "n", 5, "Number of rows")
	return cmd
}

func (a *app) tailCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "tail FILE",
		Short: "Print the last rows of a column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd, args[0], func(c *column.Column) (*column.Column, error) {
				return c.Tail(n)
			})
		},
	}
	cmd.Flags().IntVarP(&n, "rows", "n", 5, "Number of rows")
	return cmd
}

func (a *app) sampleCmd() *cobra.Command {
	var (
		n       int
		frac    float64
		seed    uint64
		replace bool
	)
	cmd := &cobra.Command{
		Use:   "sample FILE",
		Short: "Print randomly drawn rows",
		Long: `Print randomly drawn rows of a column.

Example:
  colkit sample data.json -n 3 --seed 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []sample.Option
			if cmd.Flags().Changed("rows") {
				opts = append(opts, sample.N(n))
			}
			if cmd.Flags().Changed("frac") {
				opts = append(opts, sample.Frac(frac))
			}
			if replace {
				opts = append(opts, sample.Replace())
			}
			switch {
			case cmd.Flags().Changed("seed"):
				opts = append(opts, sample.Seed(seed))
			case a.cfg.Sampling.Seed != 0:
				opts = append(opts, sample.Seed(a.cfg.Sampling.Seed))
			}
			return a.view(cmd, args[0], func(c *column.Column) (*column.Column, error) {
				return c.Sample(opts...)
			})
		},
	}
	cmd.Flags().IntVarP(&n, "rows", "n", 1, "Number of rows to draw")
	cmd.Flags().Float64Var(&frac, "frac", 0, "Fraction of rows to draw")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed")
	cmd.Flags().BoolVar(&replace, "replace", false, "Draw with replacement")
	return cmd
}

func (a *app) describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe FILE",
		Short: "Summarize a column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.load(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			return describe(cmd.OutOrStdout(), c)
		},
	}
}

func (a *app) convertCmd() *cobra.Command {
	cfg := formats.DefaultWriterConfig()
	cmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Rewrite a column file in another format",
		Long: `Rewrite a column file. The output format follows the OUT extension:
.arrow, .parquet and .avro write one field, anything else writes a JSON array
that load reads back, compressed when OUT ends in .gz, .zst, .lz4, .sz or .s2.`,
		Example: `  colkit convert labels.json labels.parquet --compression zstd
  colkit convert scores.avro scores.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.load(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			out := args[1]
			alg := compression.ForPath(out)
			if _, ok := formats.ForPath(compression.TrimExt(out)); ok {
				if alg != compression.None {
					return errors.Newf(errors.ErrorTypeConfig, "%s: column files compress internally, use --compression", out).
						WithDetail("path", out)
				}
				cfg.Format = ""
				return formats.WriteFile(out, c, cfg)
			}

			var buf bytes.Buffer
			if err := writeValues(&buf, c); err != nil {
				return err
			}
			data, err := compression.Compress(alg, buf.Bytes())
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return errors.Wrap(err, errors.ErrorTypeFile, "failed to write output file").WithDetail("path", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.Field, "out-field", cfg.Field, "Field name written to the output")
	cmd.Flags().StringVar(&cfg.Compression, "compression", cfg.Compression, "Output compression (none, snappy, zstd, gzip, lz4)")
	cmd.Flags().IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "Rows per record batch, row group or block")
	return cmd
}

// view loads path, derives a column with fn and prints it
func (a *app) view(cmd *cobra.Command, path string, fn func(*column.Column) (*column.Column, error)) error {
	var reg *provenance.Registry
	if a.v.GetBool("lineage") {
		reg = provenance.New()
	}
	c, err := a.load(cmd.Context(), path, reg)
	if err != nil {
		return err
	}
	out, err := fn(c)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch format := a.v.GetString("output"); format {
	case "json":
		return writeJSON(w, out, reg)
	case "text", "":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unknown output format %q", format)
	}

	lines, err := out.Render(a.cfg.Display.MaxRows)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	if reg != nil {
		fmt.Fprintln(w)
		for _, e := range reg.Query(out.ID()) {
			fmt.Fprintf(w, "%s <- %s %v\n", e.Output, e.Operation, e.Inputs)
		}
	}
	return nil
}

type jsonRow struct {
	Row   int `json:"row"`
	Value any `json:"value"`
}

type jsonEdge struct {
	Output    string         `json:"output"`
	Operation string         `json:"operation"`
	Inputs    []string       `json:"inputs"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// writeJSON streams every row as a JSON array, followed by the lineage
// edges as a second array when reg is set. Values JSON cannot hold directly
// are written with the column's formatter.
func writeJSON(w io.Writer, c *column.Column, reg *provenance.Registry) error {
	s, err := c.ToSeries()
	if err != nil {
		return err
	}
	enc := json.NewStreamingEncoder(w, true)
	for i, v := range s.Values {
		if err := enc.Encode(jsonRow{Row: s.Index[i], Value: jsonValue(c, v)}); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write row").WithDetail("row", i)
		}
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if reg == nil {
		return nil
	}

	enc = json.NewStreamingEncoder(w, true)
	for _, e := range reg.Query(c.ID()) {
		if err := enc.Encode(jsonEdge{Output: e.Output, Operation: e.Operation, Inputs: e.Inputs, Metadata: e.Metadata}); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write lineage")
		}
	}
	return enc.Close()
}

// writeValues writes the column as a plain JSON array
func writeValues(w io.Writer, c *column.Column) error {
	values, err := c.Rows()
	if err != nil {
		return err
	}
	enc := json.NewStreamingEncoder(w, true)
	for i, v := range values {
		if err := enc.Encode(jsonValue(c, v)); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write row").WithDetail("row", i)
		}
	}
	return enc.Close()
}

// jsonValue passes JSON-native values through and formats the rest
func jsonValue(c *column.Column, v any) any {
	switch x := v.(type) {
	case nil, bool, int64, float64, string, []float64:
		return v
	case mat.Vector:
		return mat.Col(nil, 0, x)
	}
	return c.Formatter().Format(v)
}

func describe(w io.Writer, c *column.Column) error {
	fmt.Fprintf(w, "kind: %s\n", c.Kind())
	fmt.Fprintf(w, "rows: %d\n", c.Len())

	switch b := c.Backend().(type) {
	case *columnar.Numeric[int64]:
		fmt.Fprintf(w, "dtype: %s\n", b.DType())
		x := make([]float64, b.Len())
		for i, v := range b.Values() {
			x[i] = float64(v)
		}
		summarize(w, x)
	case *columnar.Numeric[float64]:
		fmt.Fprintf(w, "dtype: %s\n", b.DType())
		summarize(w, b.Values())
	case *columnar.Numeric[bool]:
		fmt.Fprintf(w, "dtype: %s\n", b.DType())
		count := 0
		for _, v := range b.Values() {
			if v {
				count++
			}
		}
		fmt.Fprintf(w, "true: %d\n", count)
	case *columnar.Tensor:
		fmt.Fprintf(w, "width: %d\n", b.Width())
	case *columnar.Series:
		counts := map[string]int{}
		for _, v := range b.Values {
			counts[fmt.Sprint(v)]++
		}
		fmt.Fprintf(w, "distinct: %d\n", len(counts))
		if top, n := mostCommon(counts); n > 0 {
			fmt.Fprintf(w, "top: %s (%d)\n", top, n)
		}
	}
	return nil
}

func summarize(w io.Writer, x []float64) {
	if len(x) == 0 {
		return
	}
	mean, std := stat.MeanStdDev(x, nil)
	fmt.Fprintf(w, "min: %g\n", floats.Min(x))
	fmt.Fprintf(w, "max: %g\n", floats.Max(x))
	fmt.Fprintf(w, "mean: %g\n", mean)
	if len(x) > 1 {
		fmt.Fprintf(w, "std: %g\n", std)
	}
}

func mostCommon(counts map[string]int) (string, int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best, n := "", 0
	for _, k := range keys {
		if counts[k] > n {
			best, n = k, counts[k]
		}
	}
	return best, n
}
