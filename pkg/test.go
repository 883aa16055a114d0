package pkg

import (
	"fmt"
	gio "io"
	"os"
	"sort"

	"github.com/nlpodyssey/spago/pkg/ml/stats"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"perceptron/pkg/io"
	"perceptron/pkg/model"
)

// Test evaluates a saved model on a CSV file, or on stdin when inputFileName is empty.
func Test(modelFileName, inputFileName, outputFileName string, report gio.Writer) error {

	modelFile, err := os.Open(modelFileName)
	if err != nil {
		return errors.Wrapf(err, "error opening model file %s", modelFileName)
	}
	defer modelFile.Close()

	m, err := io.LoadModel(modelFile)
	if err != nil {
		return errors.Wrapf(err, "error loading model from file %s", modelFileName)
	}
	network, err := m.Network()
	if err != nil {
		return errors.Wrapf(err, "invalid model in file %s", modelFileName)
	}

	params := io.DataParameters{
		DataFile:    inputFileName,
		NumFeatures: network.NumInputs(),
		Labels:      network.Labels(),
	}
	var instances []model.Instance
	var dataErrors []io.DataError
	if inputFileName == "" {
		instances, dataErrors, err = io.ReadInstances(os.Stdin, params)
	} else {
		instances, dataErrors, err = io.LoadInstances(params)
	}
	if err != nil {
		return errors.Wrapf(err, "error loading data from %s", inputFileName)
	}
	printDataErrors(dataErrors)
	if len(instances) == 0 {
		return errors.New("no data to test")
	}

	data, err := model.NewDatasetWithStats(instances, network.Min(), network.Max(), network.Labels())
	if err != nil {
		return errors.Wrap(err, "error building test data")
	}
	return testInternal(network, data, outputFileName, report)
}

func testInternal(network *model.Network, data *model.Dataset, outputFileName string, report gio.Writer) error {

	var outputWriter gio.Writer
	if outputFileName != "" {
		outputFile, err := os.Create(outputFileName)
		if err != nil {
			return errors.Wrapf(err, "error opening output file %s", outputFileName)
		}
		defer outputFile.Close()
		outputWriter = outputFile
	} else {
		outputWriter = NoopWriter{}
	}

	matrix, err := Evaluate(network, data, outputWriter)
	if err != nil {
		return errors.Wrap(err, "error evaluating network")
	}
	reportConfusion(matrix, report)
	return nil
}

// reportConfusion writes the matrix table to report and logs the derived metrics.
func reportConfusion(matrix *ConfusionMatrix, report gio.Writer) {
	fmt.Fprint(report, matrix.String())

	metrics := matrix.ClassMetrics()
	// Sort class names for deterministic output
	for _, class := range sortClasses(metrics) {
		result := metrics[class]
		log.Info().Str("Class", class).
			Int("TP", result.TruePos).
			Int("FP", result.FalsePos).
			Int("TN", result.TrueNeg).
			Int("FN", result.FalseNeg).
			Float64("Precision", result.Precision()).
			Float64("Recall", result.Recall()).
			Float64("F1", result.F1Score()).
			Msg("")
	}

	macroF1, microF1 := computeOverallF1(metrics)
	log.Info().Float64("MacroF1", macroF1).Float64("MicroF1", microF1).
		Float64("Accuracy", matrix.Accuracy()).Int("Instances", matrix.Total()).Msg("")
}

func computeOverallF1(metrics map[string]*stats.ClassMetrics) (float64, float64) {
	if len(metrics) == 0 {
		return 0, 0
	}
	macroF1 := 0.0
	for _, metric := range metrics {
		macroF1 += metric.F1Score()
	}
	macroF1 /= float64(len(metrics))

	micro := stats.NewMetricCounter()
	for _, result := range metrics {
		micro.TruePos += result.TruePos
		micro.FalsePos += result.FalsePos
		micro.FalseNeg += result.FalseNeg
		micro.TrueNeg += result.TrueNeg
	}
	return macroF1, micro.F1Score()
}

func sortClasses(metrics map[string]*stats.ClassMetrics) []string {
	result := make([]string, 0, len(metrics))
	for class := range metrics {
		result = append(result, class)
	}
	sort.Strings(result)
	return result
}
