// Package batchfn adapts user functions so they can be applied uniformly to
// chunks of rows, whether they take one row at a time or a whole batch.
//
// A function is inspected once with Inspect, which settles its Properties,
// and the returned Adapter is reused for every chunk of the run.
package batchfn

import (
	"fmt"
	"reflect"

	"gonum.org/v1/gonum/mat"

	"github.com/ajitpratap0/colkit/pkg/errors"
)

// Chunk is a run of rows handed to a function
type Chunk interface {
	Len() int
	// Rows returns the chunk's stored values in order
	Rows() ([]any, error)
}

// Properties describes how a function consumes and produces rows. It is
// fixed once Inspect returns.
type Properties struct {
	Batched     bool
	WithIndices bool
	BoolOutput  bool
}

// Options carries what the caller already knows about a function
type Options struct {
	// Batched is trusted when non-nil
	Batched *bool
	// WithIndices requires the function to take row indices as its second
	// argument
	WithIndices bool
}

// Probe is the sample used for trial calls. A nil Batch means there are no
// rows and nothing is called.
type Probe struct {
	Row          any
	RowIndex     int
	Batch        Chunk
	BatchIndices []int
}

var (
	errorType = reflect.TypeOf((*error)(nil)).Elem()
	intType   = reflect.TypeOf(0)
	intsType  = reflect.TypeOf([]int(nil))
)

// Adapter invokes an inspected function on chunks
type Adapter struct {
	fn    reflect.Value
	typ   reflect.Type
	props Properties
}

// Inspect validates fn and determines its Properties. fn must be a func
// taking one value, or a value plus indices (int for row functions, []int
// for either), and returning one value or a value and an error.
//
// Unless opts.Batched is set, fn is called on probe.Row and on probe.Batch.
// A batch output with one element per row marks fn as batched, otherwise a
// successful row call marks it row-wise. When both calls succeed and the row
// output is itself a sequence of the batch length the shape cannot be
// decided and AmbiguousFunctionShape is returned.
func Inspect(fn any, opts Options, probe Probe) (*Adapter, error) {
	a, err := newAdapter(fn, opts)
	if err != nil {
		return nil, err
	}

	if probe.Batch == nil {
		a.props.Batched = opts.Batched != nil && *opts.Batched
		a.props.BoolOutput = staticBool(a.typ.Out(0))
		return a, nil
	}

	if opts.Batched != nil {
		a.props.Batched = *opts.Batched
		if a.props.Batched {
			out, err := a.callBatch(probe.Batch, probe.BatchIndices)
			if err != nil {
				return nil, err
			}
			a.props.BoolOutput = allBool(out)
		} else {
			out, err := a.callRow(probe.Row, probe.RowIndex)
			if err != nil {
				return nil, err
			}
			_, a.props.BoolOutput = out.(bool)
		}
		return a, nil
	}

	rowOut, rowErr := a.callRow(probe.Row, probe.RowIndex)
	batchOut, batchErr := a.callBatch(probe.Batch, probe.BatchIndices)
	switch {
	case rowErr == nil && batchErr == nil:
		if seq, ok := Sequence(rowOut); ok && len(seq) == probe.Batch.Len() {
			return nil, errors.New(errors.ErrorTypeAmbiguousFunctionShape,
				"function accepts both a row and a batch and returns a batch-sized sequence for each; set Batched explicitly").
				WithDetail("function", a.typ.String())
		}
		a.props.Batched = true
		a.props.BoolOutput = allBool(batchOut)
	case batchErr == nil:
		a.props.Batched = true
		a.props.BoolOutput = allBool(batchOut)
	case rowErr == nil:
		_, a.props.BoolOutput = rowOut.(bool)
	default:
		return nil, errors.Wrap(rowErr, errors.ErrorTypeInvalidFunction, "function could not be applied to a row or a batch").
			WithDetail("function", a.typ.String()).
			WithDetail("batch_error", batchErr.Error())
	}
	return a, nil
}

func newAdapter(fn any, opts Options) (*Adapter, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return nil, errors.Newf(errors.ErrorTypeInvalidFunction, "expected a function, got %T", fn)
	}
	t := v.Type()
	if t.IsVariadic() || t.NumIn() < 1 || t.NumIn() > 2 {
		return nil, errors.Newf(errors.ErrorTypeInvalidFunction, "function must take 1 or 2 arguments: %s", t)
	}
	if t.NumOut() < 1 || t.NumOut() > 2 || (t.NumOut() == 2 && !t.Out(1).Implements(errorType)) {
		return nil, errors.Newf(errors.ErrorTypeInvalidFunction, "function must return a value and optionally an error: %s", t)
	}

	withIndices := t.NumIn() == 2
	if withIndices && t.In(1) != intType && t.In(1) != intsType {
		return nil, errors.Newf(errors.ErrorTypeInvalidFunction, "second argument must be int or []int: %s", t)
	}
	if opts.WithIndices && !withIndices {
		return nil, errors.Newf(errors.ErrorTypeInvalidFunction, "indices requested but function takes one argument: %s", t)
	}
	if withIndices && t.In(1) == intType && opts.Batched != nil && *opts.Batched {
		return nil, errors.Newf(errors.ErrorTypeInvalidFunction, "batched function must take []int indices: %s", t)
	}

	return &Adapter{fn: v, typ: t, props: Properties{WithIndices: withIndices}}, nil
}

// Properties returns the inspected properties
func (a *Adapter) Properties() Properties {
	return a.props
}

// Call applies the function to chunk and returns one output per row.
// indices are the absolute row positions of the chunk.
func (a *Adapter) Call(chunk Chunk, indices []int) ([]any, error) {
	if a.props.Batched {
		return a.callBatch(chunk, indices)
	}
	rows, err := chunk.Rows()
	if err != nil {
		return nil, err
	}
	out := make([]any, len(rows))
	for i, row := range rows {
		idx := i
		if i < len(indices) {
			idx = indices[i]
		}
		if out[i], err = a.callRow(row, idx); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (a *Adapter) callRow(row any, index int) (any, error) {
	arg, err := convertArg(row, a.typ.In(0))
	if err != nil {
		return nil, err
	}
	args := []reflect.Value{arg}
	if a.props.WithIndices {
		if a.typ.In(1) == intType {
			args = append(args, reflect.ValueOf(index))
		} else {
			args = append(args, reflect.ValueOf([]int{index}))
		}
	}
	return a.invoke(args)
}

func (a *Adapter) callBatch(chunk Chunk, indices []int) ([]any, error) {
	arg, err := convertArg(chunk, a.typ.In(0))
	if err != nil {
		return nil, err
	}
	args := []reflect.Value{arg}
	if a.props.WithIndices {
		if a.typ.In(1) != intsType {
			return nil, errors.New(errors.ErrorTypeInvalidFunction, "batched call needs []int indices")
		}
		args = append(args, reflect.ValueOf(indices))
	}
	out, err := a.invoke(args)
	if err != nil {
		return nil, err
	}
	seq, ok := Sequence(out)
	if !ok || len(seq) != chunk.Len() {
		return nil, errors.Newf(errors.ErrorTypeInvalidFunctionOutput, "batched function returned %T for %d rows", out, chunk.Len()).
			WithDetail("rows", chunk.Len())
	}
	return seq, nil
}

func (a *Adapter) invoke(args []reflect.Value) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.ErrorTypeInvalidFunction, "function panicked: %v", r).
				WithDetail("function", a.typ.String())
		}
	}()
	res := a.fn.Call(args)
	if len(res) == 2 && !res[1].IsNil() {
		return nil, errors.Wrap(res[1].Interface().(error), errors.ErrorTypeInvalidFunction, "function returned an error")
	}
	return res[0].Interface(), nil
}

// convertArg builds a call argument of type t from v. Numeric values are
// converted between Go numeric types; a chunk is passed as is or unpacked
// into a slice parameter.
func convertArg(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, errors.Newf(errors.ErrorTypeInvalidFunction, "cannot pass nil as %s", t)
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if isNumeric(rv.Kind()) && isNumeric(t.Kind()) {
		return rv.Convert(t), nil
	}
	if chunk, ok := v.(Chunk); ok && t.Kind() == reflect.Slice {
		rows, err := chunk.Rows()
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.MakeSlice(t, len(rows), len(rows))
		for i, row := range rows {
			elem, err := convertArg(row, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(elem)
		}
		return out, nil
	}
	return reflect.Value{}, errors.Newf(errors.ErrorTypeInvalidFunction, "cannot pass %T as %s", v, t)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Sequence unpacks v into one value per row. Chunks, gonum vectors and
// matrices (by row), slices and arrays are sequences; strings are not.
func Sequence(v any) ([]any, bool) {
	switch x := v.(type) {
	case nil, string:
		return nil, false
	case Chunk:
		rows, err := x.Rows()
		return rows, err == nil
	case mat.Vector:
		out := make([]any, x.Len())
		for i := range out {
			out[i] = x.AtVec(i)
		}
		return out, true
	case *mat.Dense:
		r, c := x.Dims()
		out := make([]any, r)
		for i := range out {
			out[i] = mat.NewVecDense(c, mat.Row(nil, i, x))
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func allBool(values []any) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if _, ok := v.(bool); !ok {
			return false
		}
	}
	return true
}

func staticBool(t reflect.Type) bool {
	if t.Kind() == reflect.Bool {
		return true
	}
	return (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) && t.Elem().Kind() == reflect.Bool
}

func (p Properties) String() string {
	return fmt.Sprintf("batched=%t with_indices=%t bool_output=%t", p.Batched, p.WithIndices, p.BoolOutput)
}
