package column

import (
	"github.com/ajitpratap0/colkit/pkg/columnar"
	"github.com/ajitpratap0/colkit/pkg/errors"
)

// Writer accumulates streamed outputs and finalizes them into one column.
// The output kind is decided by the first value written.
type Writer struct {
	template *Column
	values   []any
	kind     columnar.Kind
	started  bool
	done     bool
}

// NewWriter creates a writer. The finished column always inherits the
// template's registry and logger, and its formatter and collation when the
// output has the template's kind. template may be nil.
func NewWriter(template *Column) *Writer {
	return &Writer{template: template}
}

// Write appends values
func (w *Writer) Write(values []any) error {
	if w.done {
		return errors.New(errors.ErrorTypeInternal, "write after finalize")
	}
	if !w.started && len(values) > 0 {
		w.kind = columnar.KindOf(values[0])
		w.started = true
	}
	w.values = append(w.values, values...)
	return nil
}

// Kind returns the output kind, known once a value has been written
func (w *Writer) Kind() (columnar.Kind, bool) {
	return w.kind, w.started
}

// Len returns the number of buffered rows
func (w *Writer) Len() int { return len(w.values) }

// Finalize builds the output column. It can only be called once.
func (w *Writer) Finalize() (*Column, error) {
	if w.done {
		return nil, errors.New(errors.ErrorTypeInternal, "writer already finalized")
	}
	w.done = true

	t := w.template
	sameKind := t != nil && w.started && t.Kind() == w.kind

	var (
		b   columnar.Backend
		err error
	)
	if sameKind && t.collate != nil {
		b, err = t.collate(w.values)
	} else {
		b, err = columnar.Collate(w.values)
	}
	w.values = nil
	if err != nil {
		return nil, err
	}

	var opts []Option
	if t != nil {
		opts = append(opts, WithProvenance(t.registry), WithLogger(t.log))
		if sameKind {
			opts = append(opts, WithFormatter(t.formatter), WithCollate(t.collate))
		}
	}
	return New(b, opts...), nil
}
