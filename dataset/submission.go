package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/mizuiro/houseprice/pkg/errors"
)

// WriteSubmission writes the two-column submission table, header
// "Id,SalePrice", one row per prediction in input order. Positional
// alignment between ids and prices is the only correctness contract:
// no deduplication, no sorting.
func WriteSubmission(w io.Writer, ids, prices []float64) error {
	if len(ids) != len(prices) {
		return errors.NewDimensionError("dataset.WriteSubmission", len(ids), len(prices), 0)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Id", "SalePrice"}); err != nil {
		return errors.Wrap(err, "dataset.WriteSubmission: header")
	}
	for i := range ids {
		row := []string{
			strconv.FormatFloat(ids[i], 'f', -1, 64),
			strconv.FormatFloat(prices[i], 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "dataset.WriteSubmission: row %d", i)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "dataset.WriteSubmission: flush")
}

// WriteSubmissionFile writes the submission table to path.
func WriteSubmissionFile(path string, ids, prices []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "dataset.WriteSubmissionFile: creating %s", path)
	}
	defer func() { _ = file.Close() }()
	return WriteSubmission(file, ids, prices)
}
