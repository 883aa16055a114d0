package io

import (
	"encoding/csv"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"perceptron/pkg/model"
)

type DataParameters struct {
	DataFile string

	// NumFeatures is the expected number of numeric columns before the label column. When zero it
	// is taken from the header.
	NumFeatures int

	// Labels, when set, restricts the accepted class labels. Rows with another label are
	// reported as data errors.
	Labels []string
}

// DataError describes a skipped row. Line counts CSV records with the header as record 1.
type DataError struct {
	Line  int
	Error string
}

// LoadData reads a CSV file and derives the dataset statistics from its rows.
func LoadData(p DataParameters) (*model.Dataset, []DataError, error) {
	instances, dataErrors, err := LoadInstances(p)
	if err != nil {
		return nil, nil, err
	}
	dataset, err := model.NewDataset(instances)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "error building dataset from %s", p.DataFile)
	}
	return dataset, dataErrors, nil
}

// LoadInstances reads a CSV file whose first line is a header and whose last column is the
// class label. Malformed rows are skipped and reported.
func LoadInstances(p DataParameters) ([]model.Instance, []DataError, error) {
	inputFile, err := os.Open(p.DataFile)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error opening file")
	}
	defer inputFile.Close()
	return ReadInstances(inputFile, p)
}

// ReadInstances parses CSV records from r. See LoadInstances.
func ReadInstances(r io.Reader, p DataParameters) ([]model.Instance, []DataError, error) {
	var dataErrors []DataError
	numFeatures := p.NumFeatures
	known := labelSet(p.Labels)

	reader := csv.NewReader(r)
	reader.Comma = ','
	// column counts are validated per row so a bad row does not abort the whole file
	reader.FieldsPerRecord = -1

	//First line is expected to be a header
	header, err := reader.Read()
	if err != nil {
		return nil, nil, errors.Wrap(err, "error reading data header")
	}
	if numFeatures == 0 {
		numFeatures = len(header) - 1
	}
	if numFeatures <= 0 {
		return nil, nil, errors.Errorf("header %v has no feature columns", header)
	}

	var result []model.Instance
	currentLine := 1
	for {
		record, err := reader.Read()
		currentLine++
		if err == io.EOF {
			break
		}
		if err != nil {
			if parseErr, ok := err.(*csv.ParseError); ok {
				dataErrors = append(dataErrors, DataError{Line: currentLine, Error: parseErr.Err.Error()})
				continue
			}
			return nil, nil, errors.Wrap(err, "error reading data")
		}
		if isBlank(record) {
			continue
		}

		instance, err := parseRecord(record, numFeatures)
		if err != nil {
			dataErrors = append(dataErrors, DataError{Line: currentLine, Error: err.Error()})
			continue
		}
		if _, ok := known[instance.Label()]; known != nil && !ok {
			dataErrors = append(dataErrors, DataError{
				Line:  currentLine,
				Error: fmt.Sprintf("unknown class label %s", instance.Label()),
			})
			continue
		}
		result = append(result, instance)
	}

	return result, dataErrors, nil
}

func parseRecord(record []string, numFeatures int) (model.Instance, error) {
	if len(record) != numFeatures+1 {
		return model.Instance{}, errors.Errorf("expected %d columns, found %d", numFeatures+1, len(record))
	}
	features := make([]float64, numFeatures)
	for i := 0; i < numFeatures; i++ {
		value, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
		if err != nil {
			return model.Instance{}, errors.Wrapf(err, "error parsing feature %d", i)
		}
		features[i] = value
	}
	label := strings.TrimSpace(record[numFeatures])
	if label == "" {
		return model.Instance{}, errors.New("empty class label")
	}
	return model.NewInstance(features, label), nil
}

func labelSet(labels []string) map[string]struct{} {
	if labels == nil {
		return nil
	}
	set := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		set[label] = struct{}{}
	}
	return set
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func SaveModel(m *model.Model, writer io.Writer) error {
	encoder := gob.NewEncoder(writer)
	err := encoder.Encode(m)
	if err != nil {
		return errors.Wrap(err, "error encoding model")
	}
	return nil
}

func LoadModel(input io.Reader) (*model.Model, error) {
	decoder := gob.NewDecoder(input)
	m := model.Model{}
	err := decoder.Decode(&m)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding model")
	}
	return &m, nil
}

// SaveHistory writes the per-epoch error curve as epoch,error rows.
func SaveHistory(history []float64, writer io.Writer) error {
	w := csv.NewWriter(writer)
	if err := w.Write([]string{"epoch", "error"}); err != nil {
		return errors.Wrap(err, "error writing history header")
	}
	for i, value := range history {
		row := []string{strconv.Itoa(i + 1), strconv.FormatFloat(value, 'g', -1, 64)}
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, "error writing history")
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "error flushing history")
}
