package matfile

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ReadTable parses a delimited survival dataset: a header row (discarded),
// then one row per sample whose columns are the feature values followed by
// the event/censoring time and the observed-event flag.
func ReadTable(r io.Reader) (X *mat.Dense, T []float64, O []int, err error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "reading table")
	}
	if len(records) < 2 {
		return nil, nil, nil, errors.Errorf("table has no data rows")
	}
	records = records[1:] // header

	p := len(records[0]) - 2
	if p < 1 {
		return nil, nil, nil, errors.Errorf("table rows need at least one feature plus time and censoring columns")
	}

	X = mat.NewDense(len(records), p, nil)
	T = make([]float64, len(records))
	O = make([]int, len(records))
	for i, rec := range records {
		if len(rec) != p+2 {
			return nil, nil, nil, errors.Errorf("row %d has %d columns, want %d", i+2, len(rec), p+2)
		}
		for j := 0; j < p; j++ {
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, nil, nil, errors.Wrapf(err, "row %d column %d", i+2, j+1)
			}
			X.Set(i, j, v)
		}
		if T[i], err = strconv.ParseFloat(rec[p], 64); err != nil {
			return nil, nil, nil, errors.Wrapf(err, "row %d time", i+2)
		}
		flag, err := strconv.ParseFloat(rec[p+1], 64)
		if err != nil {
			return nil, nil, nil, errors.Wrapf(err, "row %d censoring flag", i+2)
		}
		O[i] = int(flag)
	}
	return X, T, O, nil
}

// ReadTableFile is ReadTable over a file on disk.
func ReadTableFile(filename string) (*mat.Dense, []float64, []int, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "opening %s", filename)
	}
	defer f.Close()
	return ReadTable(f)
}
