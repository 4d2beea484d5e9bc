package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mizuiro/houseprice/pkg/errors"
)

// missing reports whether a raw cell is one of the missing markers
// used by the input files.
func missing(cell string) bool {
	switch strings.TrimSpace(cell) {
	case "", "NA", "NaN":
		return true
	}
	return false
}

// ReadCSV loads a delimited file with a header row into a Frame.
func ReadCSV(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.ReadCSV: opening %s", path)
	}
	defer func() { _ = file.Close() }()
	frame, err := ReadCSVFrom(file)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.ReadCSV: reading %s", path)
	}
	return frame, nil
}

// ReadCSVFrom loads delimited text with a header row into a Frame.
// Column types are inferred from content: a column whose observed
// cells all parse as floats is Numeric; any other column is Text and
// its cells are stored as NaN. Missing markers ("", "NA", "NaN")
// become NaN in either case.
func ReadCSVFrom(r io.Reader) (*Frame, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "dataset.ReadCSVFrom")
	}
	if len(records) < 2 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.ReadCSVFrom: need a header row and at least one data row")
	}

	header := records[0]
	nrows := len(records) - 1

	cols := make(map[string][]float64, len(header))
	numeric := make(map[string]bool, len(header))
	for _, name := range header {
		cols[name] = make([]float64, nrows)
		numeric[name] = true
	}

	for i := 0; i < nrows; i++ {
		row := records[i+1]
		if len(row) != len(header) {
			return nil, errors.NewDimensionError("dataset.ReadCSVFrom", len(header), len(row), 1)
		}
		for j, name := range header {
			cell := row[j]
			if missing(cell) {
				cols[name][i] = math.NaN()
				continue
			}
			v, parseErr := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if parseErr != nil {
				numeric[name] = false
				cols[name][i] = math.NaN()
				continue
			}
			cols[name][i] = v
		}
	}

	frame, err := New(header, cols)
	if err != nil {
		return nil, err
	}
	for name, isNum := range numeric {
		if !isNum {
			frame.setKind(name, Text)
		}
	}
	return frame, nil
}
