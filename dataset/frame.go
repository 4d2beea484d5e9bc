// Package dataset provides the in-memory tabular structures the
// pipeline passes between stages: an ordered column-major Frame with
// NaN as the missing marker, a CSV loader with numeric/text inference,
// and the submission writer.
package dataset

import (
	"math"

	"github.com/mizuiro/houseprice/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Kind classifies a column after load-time type inference.
type Kind int

const (
	// Numeric columns have every observed cell parse as a float.
	Numeric Kind = iota
	// Text columns had at least one non-numeric observed cell. Their
	// cells are stored as NaN; the normalizer drops them.
	Text
)

// Frame is an ordered collection of named columns over a fixed number
// of rows. Missing cells are math.NaN(). Frames are value-like: every
// transforming method returns a new Frame and leaves the receiver
// untouched, so each pipeline stage sees an immutable snapshot.
type Frame struct {
	names []string
	cols  map[string][]float64
	kinds map[string]Kind
	nrows int
}

// New builds a Frame from columns in the given order. All columns must
// have equal length. Columns default to Numeric.
func New(names []string, cols map[string][]float64) (*Frame, error) {
	if len(names) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.New")
	}
	nrows := -1
	f := &Frame{
		names: append([]string(nil), names...),
		cols:  make(map[string][]float64, len(names)),
		kinds: make(map[string]Kind, len(names)),
	}
	for _, name := range names {
		col, ok := cols[name]
		if !ok {
			return nil, errors.NewSchemaError("dataset.New", name, "column not found")
		}
		if nrows == -1 {
			nrows = len(col)
		} else if len(col) != nrows {
			return nil, errors.NewDimensionError("dataset.New", nrows, len(col), 0)
		}
		f.cols[name] = append([]float64(nil), col...)
		f.kinds[name] = Numeric
	}
	f.nrows = nrows
	return f, nil
}

// NumRows returns the row count.
func (f *Frame) NumRows() int {
	return f.nrows
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.names...)
}

// Has reports whether the frame contains the named column.
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Kind returns the inferred kind of the named column.
func (f *Frame) Kind(name string) (Kind, error) {
	k, ok := f.kinds[name]
	if !ok {
		return Numeric, errors.NewSchemaError("Frame.Kind", name, "column not found")
	}
	return k, nil
}

// Column returns a copy of the named column's values.
func (f *Frame) Column(name string) ([]float64, error) {
	col, ok := f.cols[name]
	if !ok {
		return nil, errors.NewSchemaError("Frame.Column", name, "column not found")
	}
	return append([]float64(nil), col...), nil
}

// MissingCount returns the number of NaN cells in the named column.
func (f *Frame) MissingCount(name string) (int, error) {
	col, ok := f.cols[name]
	if !ok {
		return 0, errors.NewSchemaError("Frame.MissingCount", name, "column not found")
	}
	n := 0
	for _, v := range col {
		if math.IsNaN(v) {
			n++
		}
	}
	return n, nil
}

// Select projects the frame down to the named columns, in the given
// order. Every requested column must exist and be numeric; a text
// column in the selection is a schema mismatch, surfaced immediately.
func (f *Frame) Select(names []string) (*Frame, error) {
	out := &Frame{
		names: append([]string(nil), names...),
		cols:  make(map[string][]float64, len(names)),
		kinds: make(map[string]Kind, len(names)),
		nrows: f.nrows,
	}
	for _, name := range names {
		col, ok := f.cols[name]
		if !ok {
			return nil, errors.NewSchemaError("Frame.Select", name, "column not found")
		}
		if f.kinds[name] != Numeric {
			return nil, errors.NewSchemaError("Frame.Select", name, "column is not numeric")
		}
		out.cols[name] = col
		out.kinds[name] = Numeric
	}
	return out, nil
}

// Rename returns a frame with columns renamed per the mapping. Names
// absent from the frame are ignored so the same mapping can be applied
// to both the labeled and unlabeled tables.
func (f *Frame) Rename(mapping map[string]string) *Frame {
	out := &Frame{
		names: make([]string, len(f.names)),
		cols:  make(map[string][]float64, len(f.names)),
		kinds: make(map[string]Kind, len(f.names)),
		nrows: f.nrows,
	}
	for i, name := range f.names {
		newName := name
		if to, ok := mapping[name]; ok {
			newName = to
		}
		out.names[i] = newName
		out.cols[newName] = f.cols[name]
		out.kinds[newName] = f.kinds[name]
	}
	return out
}

// With returns a frame with the named column set to values, copied.
// An existing column is replaced in place; a new column is appended.
func (f *Frame) With(name string, values []float64) (*Frame, error) {
	if len(values) != f.nrows {
		return nil, errors.NewDimensionError("Frame.With", f.nrows, len(values), 0)
	}
	out := &Frame{
		names: append([]string(nil), f.names...),
		cols:  make(map[string][]float64, len(f.names)+1),
		kinds: make(map[string]Kind, len(f.names)+1),
		nrows: f.nrows,
	}
	for _, n := range f.names {
		out.cols[n] = f.cols[n]
		out.kinds[n] = f.kinds[n]
	}
	if !f.Has(name) {
		out.names = append(out.names, name)
	}
	out.cols[name] = append([]float64(nil), values...)
	out.kinds[name] = Numeric
	return out, nil
}

// Matrix assembles the named columns into a dense matrix, one column
// per name in the given order.
func (f *Frame) Matrix(names []string) (*mat.Dense, error) {
	if f.nrows == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "Frame.Matrix")
	}
	m := mat.NewDense(f.nrows, len(names), nil)
	for j, name := range names {
		col, ok := f.cols[name]
		if !ok {
			return nil, errors.NewSchemaError("Frame.Matrix", name, "column not found")
		}
		for i := 0; i < f.nrows; i++ {
			m.Set(i, j, col[i])
		}
	}
	return m, nil
}

// Vector returns the named column as a dense vector.
func (f *Frame) Vector(name string) (*mat.VecDense, error) {
	col, ok := f.cols[name]
	if !ok {
		return nil, errors.NewSchemaError("Frame.Vector", name, "column not found")
	}
	return mat.NewVecDense(f.nrows, append([]float64(nil), col...)), nil
}

// setKind is used by the loader to record text columns.
func (f *Frame) setKind(name string, k Kind) {
	f.kinds[name] = k
}
