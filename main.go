package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"perceptron/pkg"
)

func TrainCommand() *cobra.Command {

	var files pkg.DataFiles
	var trainingParameters pkg.TrainingParameters
	var onPlateau string

	var cmd = &cobra.Command{
		Use:   "train -i trainData [--test-file testData] [-o outputFile]",
		Short: "Trains a perceptron on the provided data and reports its confusion matrix on the test data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			presenter, err := newPresenter(cmd, onPlateau, trainingParameters.ReportInterval)
			if err != nil {
				return err
			}
			_, err = pkg.Train(files, trainingParameters, presenter, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVarP(&files.TrainFile, "train-file", "i", "", "name of train file")
	cmd.Flags().StringVarP(&files.TestFile, "test-file", "", "", "name of test file (optional, splits the train file if not present)")
	cmd.Flags().StringVarP(&files.OutputFile, "output-file", "o", "", "name of the file to save model to (optional)")
	cmd.Flags().StringVarP(&files.HistoryFile, "history-file", "", "", "name of the file to save the per-epoch error to (optional)")
	cmd.Flags().IntVarP(&trainingParameters.NumHidden, "hidden-units", "u", 5, "number of hidden units")
	cmd.Flags().IntVarP(&trainingParameters.NumEpochs, "num-epochs", "n", 1000, "maximum number of epochs to train")
	cmd.Flags().Float64VarP(&trainingParameters.LearningRate, "learning-rate", "l", 0.1, "learning rate")
	cmd.Flags().Float64VarP(&trainingParameters.DesiredError, "desired-error", "e", 0.01, "mean epoch error at which training stops")
	cmd.Flags().StringVarP(&trainingParameters.Activation, "activation", "a", "logistic", "activation function: linear, logistic or tanh")
	cmd.Flags().Float64VarP(&trainingParameters.TrainFraction, "train-fraction", "f", 0.7, "fraction of the train file used for training when no test file is given")
	cmd.Flags().IntVarP(&trainingParameters.ReportInterval, "report-interval", "r", 10, "epoch report interval")
	cmd.Flags().Int64VarP(&trainingParameters.RndSeed, "random-seed", "x", 42, "random seed")
	cmd.Flags().IntVarP(&trainingParameters.NumFeatures, "num-features", "", 0, "number of feature columns (optional, taken from the header if not present)")
	cmd.Flags().StringVarP(&onPlateau, "on-plateau", "p", "ask", "plateau handling: ask, stop, continue or reduce")

	_ = cmd.MarkFlagRequired("train-file")

	return cmd
}

func newPresenter(cmd *cobra.Command, onPlateau string, reportInterval int) (pkg.Presenter, error) {
	if onPlateau == "ask" {
		return pkg.NewConsolePresenter(cmd.InOrStdin(), cmd.ErrOrStderr(), reportInterval), nil
	}
	decision, err := pkg.ParseDecision(onPlateau)
	if err != nil {
		return nil, err
	}
	return pkg.NewPolicyPresenter(decision, reportInterval), nil
}

func TestCommand() *cobra.Command {
	var modelFile string
	var inputFile string
	var outputFile string

	var cmd = &cobra.Command{
		Use:   "test -m modelFile [-i inputFile] [-o outputFile]",
		Short: "Runs the provided model on the specified data input and reports its confusion matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return pkg.Test(modelFile, inputFile, outputFile, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&modelFile, "model", "m", "", "name of model to test")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "name of data input file (optional, uses stdin if not present)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "name of predictions output file (optional)")

	_ = cmd.MarkFlagRequired("model")

	return cmd

}

var logLevel string
var logFormat string

func main() {

	Main := &cobra.Command{Use: "perceptron", PersistentPreRunE: setupLogging, SilenceUsage: true}

	Main.PersistentFlags().StringVarP(&logLevel, "log-level", "", "info", "Logging level: info error or debug")
	Main.PersistentFlags().StringVarP(&logFormat, "log-format", "", "pretty", "Logging format: pretty or json")

	Main.AddCommand(TrainCommand())
	Main.AddCommand(TestCommand())

	if err := Main.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command, args []string) error {

	switch logLevel {
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		return errors.Errorf("invalid logging level %q", logLevel)
	}

	switch logFormat {
	case "pretty":
		setupPrettyLogging()
	case "json":
	default:
		return errors.Errorf("invalid log format %q", logFormat)
	}
	return nil
}

func setupPrettyLogging() {
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	writer.FormatFieldValue = func(i interface{}) string {
		switch v := i.(type) {
		case json.Number:
			if val, err := v.Int64(); err == nil {
				return strconv.FormatInt(val, 10)
			}
			val, _ := v.Float64()
			return fmt.Sprintf("%.3f", val)
		default:
			return fmt.Sprintf("%s", i)
		}

	}
	log.Logger = log.Output(writer)

}
