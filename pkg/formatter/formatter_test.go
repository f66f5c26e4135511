package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestBasicFormat(t *testing.T) {
	b := NewBasic()
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "<nil>"},
		{"int", int64(3), "3"},
		{"float", 1.5, "1.5"},
		{"string", "abc", "abc"},
		{"bytes", []byte{1, 2}, "<2 bytes>"},
		{"vector", mat.NewVecDense(3, nil), "vector(3)"},
		{"matrix", mat.NewDense(2, 4, nil), "matrix(2x4)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Format(tt.in))
		})
	}
}

func TestBasicPrecisionAndWidth(t *testing.T) {
	b := &Basic{MaxWidth: 6, Precision: 2}
	assert.Equal(t, "3.14", b.Format(3.14159))
	assert.Equal(t, "abc...", b.Format(strings.Repeat("abc", 5)))
}

func TestFunc(t *testing.T) {
	f := Func(func(v any) string { return "x" })
	assert.Equal(t, "x", f.Format(1))
}
