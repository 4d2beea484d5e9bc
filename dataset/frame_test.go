package dataset

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/mizuiro/houseprice/pkg/errors"
)

const sampleCSV = `Id,1stFlrSF,LotFrontage,Street,SalePrice
1,856,65,Pave,208500
2,1262,NA,Pave,181500
3,920,68,Grvl,223500
`

func TestReadCSVFrom(t *testing.T) {
	frame, err := ReadCSVFrom(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, frame.NumRows())
	assert.Equal(t, []string{"Id", "1stFlrSF", "LotFrontage", "Street", "SalePrice"}, frame.Columns())

	kind, err := frame.Kind("Street")
	require.NoError(t, err)
	assert.Equal(t, Text, kind, "non-numeric column should be inferred as text")

	kind, err = frame.Kind("LotFrontage")
	require.NoError(t, err)
	assert.Equal(t, Numeric, kind, "missing markers must not demote a numeric column")

	col, err := frame.Column("LotFrontage")
	require.NoError(t, err)
	assert.Equal(t, 65.0, col[0])
	assert.True(t, math.IsNaN(col[1]), "NA cell should load as NaN")
	assert.Equal(t, 68.0, col[2])
}

func TestReadCSVFromRejectsHeaderOnly(t *testing.T) {
	_, err := ReadCSVFrom(strings.NewReader("Id,SalePrice\n"))
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.ErrEmptyData))
}

func TestSelectMissingColumn(t *testing.T) {
	frame, err := ReadCSVFrom(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	_, err = frame.Select([]string{"Id", "GrLivArea"})
	require.Error(t, err)

	var se *pkgerrors.SchemaError
	require.True(t, pkgerrors.As(err, &se))
	assert.Equal(t, "GrLivArea", se.Column)
}

func TestSelectTextColumn(t *testing.T) {
	frame, err := ReadCSVFrom(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	_, err = frame.Select([]string{"Street"})
	require.Error(t, err)

	var se *pkgerrors.SchemaError
	require.True(t, pkgerrors.As(err, &se))
	assert.Equal(t, "Street", se.Column)
	assert.Contains(t, se.Reason, "not numeric")
}

func TestRenameKeepsOrderAndData(t *testing.T) {
	frame, err := ReadCSVFrom(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	renamed := frame.Rename(map[string]string{"1stFlrSF": "FirstFlrSF"})
	assert.Equal(t, []string{"Id", "FirstFlrSF", "LotFrontage", "Street", "SalePrice"}, renamed.Columns())

	col, err := renamed.Column("FirstFlrSF")
	require.NoError(t, err)
	assert.Equal(t, []float64{856, 1262, 920}, col)

	// The original frame is untouched.
	assert.True(t, frame.Has("1stFlrSF"))
	assert.False(t, frame.Has("FirstFlrSF"))
}

func TestWithDoesNotMutateReceiver(t *testing.T) {
	frame, err := New([]string{"a"}, map[string][]float64{"a": {1, 2, 3}})
	require.NoError(t, err)

	updated, err := frame.With("a", []float64{4, 5, 6})
	require.NoError(t, err)

	orig, err := frame.Column("a")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, orig)

	cur, err := updated.Column("a")
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 6}, cur)
}

func TestWithAppendsNewColumn(t *testing.T) {
	frame, err := New([]string{"a"}, map[string][]float64{"a": {1, 2}})
	require.NoError(t, err)

	updated, err := frame.With("b", []float64{3, 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, updated.Columns())

	_, err = frame.With("b", []float64{3})
	require.Error(t, err, "row count mismatch must be rejected")
}

func TestMatrixColumnOrder(t *testing.T) {
	frame, err := New([]string{"a", "b"}, map[string][]float64{
		"a": {1, 2},
		"b": {3, 4},
	})
	require.NoError(t, err)

	m, err := frame.Matrix([]string{"b", "a"})
	require.NoError(t, err)

	rows, cols := m.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 3.0, m.At(0, 0))
	assert.Equal(t, 1.0, m.At(0, 1))
}

func TestWriteSubmission(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSubmission(&buf, []float64{1461, 1462}, []float64{120500.25, 158000})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Id,SalePrice", lines[0])
	assert.Equal(t, "1461,120500.25", lines[1])
	assert.Equal(t, "1462,158000", lines[2])
}

func TestWriteSubmissionLengthMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSubmission(&buf, []float64{1461}, []float64{1, 2})
	require.Error(t, err)
}
