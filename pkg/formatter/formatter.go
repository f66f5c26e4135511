// Package formatter renders cell values as display strings. A formatter only
// affects presentation and never the stored values.
package formatter

import (
	"fmt"
	"unicode/utf8"

	"gonum.org/v1/gonum/mat"
)

// Formatter renders one cell
type Formatter interface {
	Format(v any) string
}

// Func adapts a plain function to Formatter
type Func func(v any) string

// Format implements Formatter
func (f Func) Format(v any) string { return f(v) }

// Basic renders values with fmt, summarizing vectors and matrices by shape
// and truncating long output.
type Basic struct {
	// MaxWidth truncates output to this many runes. Zero means no limit.
	MaxWidth int
	// Precision is the number of decimals for floats; negative means %v
	Precision int
}

// NewBasic returns the default formatter
func NewBasic() *Basic {
	return &Basic{MaxWidth: 80, Precision: -1}
}

// Format implements Formatter
func (b *Basic) Format(v any) string {
	var s string
	switch x := v.(type) {
	case nil:
		s = "<nil>"
	case float64:
		s = b.float(x)
	case float32:
		s = b.float(float64(x))
	case []byte:
		s = fmt.Sprintf("<%d bytes>", len(x))
	case mat.Vector:
		s = fmt.Sprintf("vector(%d)", x.Len())
	case mat.Matrix:
		r, c := x.Dims()
		s = fmt.Sprintf("matrix(%dx%d)", r, c)
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}
	return b.truncate(s)
}

func (b *Basic) float(f float64) string {
	if b.Precision < 0 {
		return fmt.Sprint(f)
	}
	return fmt.Sprintf("%.*f", b.Precision, f)
}

func (b *Basic) truncate(s string) string {
	if b.MaxWidth <= 0 || utf8.RuneCountInString(s) <= b.MaxWidth {
		return s
	}
	if b.MaxWidth <= 3 {
		return string([]rune(s)[:b.MaxWidth])
	}
	return string([]rune(s)[:b.MaxWidth-3]) + "..."
}
