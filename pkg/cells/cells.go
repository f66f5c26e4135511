// Package cells provides lazily materialized cell values. A cell column stores
// Cell handles and only pays for loading or decoding when a read asks for
// materialized values.
package cells

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder

	"gonum.org/v1/gonum/mat"

	"github.com/ajitpratap0/colkit/pkg/errors"
	"github.com/ajitpratap0/colkit/pkg/metrics"
)

// Cell is a deferred value
type Cell interface {
	// Get materializes the cell
	Get() (any, error)
}

// FileCell materializes to the bytes of a file, decompressed when the path
// carries a compression suffix
type FileCell struct {
	Path   string
	Loader *Loader
}

// NewFileCell creates a file cell read through loader. A nil loader reads
// straight from disk.
func NewFileCell(path string, loader *Loader) *FileCell {
	return &FileCell{Path: path, Loader: loader}
}

// Get implements Cell
func (c *FileCell) Get() (any, error) {
	data, err := c.Loader.Load(c.Path)
	if err != nil {
		metrics.CellMaterializations.WithLabelValues("file", "error").Inc()
		return nil, err
	}
	return data, nil
}

func (c *FileCell) String() string {
	return fmt.Sprintf("FileCell(%s)", c.Path)
}

// ImageCell materializes to a grayscale image flattened row-major into a
// vector with intensities in [0, 1]
type ImageCell struct {
	Path   string
	Loader *Loader
}

// NewImageCell creates an image cell read through loader
func NewImageCell(path string, loader *Loader) *ImageCell {
	return &ImageCell{Path: path, Loader: loader}
}

// Get implements Cell
func (c *ImageCell) Get() (any, error) {
	data, err := c.Loader.Load(c.Path)
	if err != nil {
		metrics.CellMaterializations.WithLabelValues("image", "error").Inc()
		return nil, err
	}
	vec, err := DecodeGray(data)
	if err != nil {
		metrics.CellMaterializations.WithLabelValues("image", "error").Inc()
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to decode image").
			WithDetail("path", c.Path)
	}
	return vec, nil
}

func (c *ImageCell) String() string {
	return fmt.Sprintf("ImageCell(%s)", c.Path)
}

// DecodeGray decodes an encoded image into a flattened grayscale vector
func DecodeGray(data []byte) (*mat.VecDense, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("image has no pixels")
	}

	pixels := make([]float64, 0, w*h)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			pixels = append(pixels, float64(g.Y)/255)
		}
	}
	return mat.NewVecDense(len(pixels), pixels), nil
}

// FuncCell defers an arbitrary computation until materialization. The result
// is not memoized.
type FuncCell struct {
	Fn func() (any, error)
}

// Get implements Cell
func (c FuncCell) Get() (any, error) {
	v, err := c.Fn()
	if err != nil {
		metrics.CellMaterializations.WithLabelValues("func", "error").Inc()
		return nil, err
	}
	metrics.CellMaterializations.WithLabelValues("func", "miss").Inc()
	return v, nil
}

// Value wraps an already materialized value as a cell
type Value struct {
	V any
}

// Get implements Cell
func (c Value) Get() (any, error) {
	return c.V, nil
}
