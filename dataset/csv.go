package dataset

import (
	"encoding/csv"
	"io"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/grove/pkg/errors"
)

// LabelColumn is the required name of the label column in input files.
const LabelColumn = "label"

// ReadCSV decodes a headered CSV stream into a Dataset. One column must
// be named "label" and hold 0/1 values; every other column is a numeric
// feature. Column order of the features is preserved.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Wrap(errors.ErrEmptyData, "ReadCSV")
	}
	if err != nil {
		return nil, errors.Wrap(err, "ReadCSV: header")
	}

	labelCol := -1
	featureNames := make([]string, 0, len(header)-1)
	for i, name := range header {
		if name == LabelColumn {
			if labelCol >= 0 {
				return nil, errors.NewValueError("ReadCSV", "duplicate label column")
			}
			labelCol = i
			continue
		}
		featureNames = append(featureNames, name)
	}
	if labelCol < 0 {
		return nil, errors.Wrap(errors.ErrMissingLabel, "ReadCSV")
	}
	if len(featureNames) == 0 {
		return nil, errors.NewValueError("ReadCSV", "no feature columns")
	}

	var features []float64
	var labels []float64
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "ReadCSV: line %d", line+1)
		}
		line++

		for i, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "ReadCSV: line %d column %q", line, header[i])
			}
			if i == labelCol {
				labels = append(labels, v)
			} else {
				features = append(features, v)
			}
		}
	}
	if len(labels) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "ReadCSV")
	}

	X := mat.NewDense(len(labels), len(featureNames), features)
	Y := mat.NewDense(len(labels), 1, labels)
	return New(X, Y, featureNames)
}
