package pkg

import (
	gio "io"
	"math"
	"math/rand"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"perceptron/pkg/io"
	"perceptron/pkg/model"
)

var ErrInvalidParameter = errors.New("invalid parameter")

type TrainingParameters struct {
	NumHidden      int
	NumEpochs      int
	LearningRate   float64
	DesiredError   float64
	Activation     string
	TrainFraction  float64
	ReportInterval int
	RndSeed        int64

	// NumFeatures fixes the expected feature arity of the input files, zero takes it from the header
	NumFeatures int
}

// Validate rejects parameters training cannot start with.
func (p TrainingParameters) Validate() error {
	switch {
	case p.NumEpochs <= 0:
		return errors.Wrapf(ErrInvalidParameter, "number of epochs must be greater than 0, got %d", p.NumEpochs)
	case p.NumHidden <= 0:
		return errors.Wrapf(ErrInvalidParameter, "number of hidden units must be greater than 0, got %d", p.NumHidden)
	case math.IsNaN(p.LearningRate) || p.LearningRate <= 0 || p.LearningRate > 1:
		return errors.Wrapf(ErrInvalidParameter, "learning rate must be in (0, 1], got %g", p.LearningRate)
	case math.IsNaN(p.DesiredError) || p.DesiredError < 0:
		return errors.Wrapf(ErrInvalidParameter, "desired error must not be negative, got %g", p.DesiredError)
	case math.IsNaN(p.TrainFraction) || p.TrainFraction <= 0 || p.TrainFraction >= 1:
		return errors.Wrapf(ErrInvalidParameter, "train fraction must be in (0, 1), got %g", p.TrainFraction)
	case p.ReportInterval <= 0:
		return errors.Wrapf(ErrInvalidParameter, "report interval must be greater than 0, got %d", p.ReportInterval)
	case p.NumFeatures < 0:
		return errors.Wrapf(ErrInvalidParameter, "number of features must not be negative, got %d", p.NumFeatures)
	}
	if _, err := model.ParseActivation(p.Activation); err != nil {
		return errors.Wrap(ErrInvalidParameter, err.Error())
	}
	return nil
}

type DataFiles struct {
	TrainFile string
	// TestFile is optional; without it the train file is split by TrainFraction
	TestFile    string
	OutputFile  string
	HistoryFile string
}

// Train loads the data, trains a network while presenter handles progress and plateaus, saves
// the requested artifacts and writes the test set confusion matrix to report.
func Train(files DataFiles, params TrainingParameters, presenter Presenter, report gio.Writer) (*TrainingResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	activation, _ := model.ParseActivation(params.Activation)
	rnd := rand.New(rand.NewSource(params.RndSeed))

	trainData, testData, err := loadTrainTest(files, params, rnd)
	if err != nil {
		return nil, err
	}
	log.Info().Int("Train", trainData.Size()).Int("Test", testData.Size()).
		Int("Features", trainData.NumFeatures()).Strs("Classes", trainData.Labels()).Msg("data loaded")

	network, err := model.NewNetwork(trainData.NumFeatures(), params.NumHidden, trainData.NumClasses(),
		activation, params.LearningRate, trainData, rnd)
	if err != nil {
		return nil, errors.Wrap(err, "error creating network")
	}
	trainer, err := NewTrainer(network, trainData, params.NumEpochs, params.DesiredError, rnd)
	if err != nil {
		return nil, err
	}

	result, err := Serve(trainer, presenter)
	if err != nil {
		return nil, err
	}
	log.Info().Int("Epochs", result.Epochs).Float64("FinalError", result.FinalError).
		Float64("MeanError", stat.Mean(result.History, nil)).Float64("LearningRate", result.LearningRate).
		Bool("Stopped", result.Stopped).Msg("training finished")

	if files.OutputFile != "" {
		if err := saveModel(network.Model(), files.OutputFile); err != nil {
			return nil, err
		}
	}
	if files.HistoryFile != "" {
		if err := saveHistory(result.History, files.HistoryFile); err != nil {
			return nil, err
		}
	}

	if testData.Size() == 0 {
		log.Warn().Msg("No test data, skipping evaluation")
		return result, nil
	}
	matrix, err := NewConfusionMatrix(network, testData)
	if err != nil {
		return nil, errors.Wrap(err, "error evaluating network")
	}
	reportConfusion(matrix, report)
	return result, nil
}

func loadTrainTest(files DataFiles, params TrainingParameters, rnd *rand.Rand) (*model.Dataset, *model.Dataset, error) {
	data, dataErrors, err := io.LoadData(io.DataParameters{DataFile: files.TrainFile, NumFeatures: params.NumFeatures})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "error reading training data from %s", files.TrainFile)
	}
	printDataErrors(dataErrors)
	if data.Size() == 0 {
		return nil, nil, errors.Errorf("no data to train in %s", files.TrainFile)
	}

	if files.TestFile == "" {
		trainData, testData, err := data.Split(params.TrainFraction, rnd)
		if err != nil {
			return nil, nil, errors.Wrap(err, "error splitting data")
		}
		return trainData, testData, nil
	}

	instances, dataErrors, err := io.LoadInstances(io.DataParameters{
		DataFile:    files.TestFile,
		NumFeatures: data.NumFeatures(),
		Labels:      data.Labels(),
	})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "error reading test data from %s", files.TestFile)
	}
	printDataErrors(dataErrors)
	testData, err := model.NewDatasetWithStats(instances, data.Min(), data.Max(), data.Labels())
	if err != nil {
		return nil, nil, errors.Wrap(err, "error building test data")
	}
	return data, testData, nil
}

func saveModel(m *model.Model, outputFileName string) error {
	outputFile, err := os.Create(outputFileName)
	if err != nil {
		return errors.Wrapf(err, "error creating output file %s", outputFileName)
	}
	defer outputFile.Close()
	if err := io.SaveModel(m, outputFile); err != nil {
		return errors.Wrapf(err, "error saving model to %s", outputFileName)
	}
	return nil
}

func saveHistory(history []float64, historyFileName string) error {
	historyFile, err := os.Create(historyFileName)
	if err != nil {
		return errors.Wrapf(err, "error creating history file %s", historyFileName)
	}
	defer historyFile.Close()
	if err := io.SaveHistory(history, historyFile); err != nil {
		return errors.Wrapf(err, "error saving history to %s", historyFileName)
	}
	return nil
}
