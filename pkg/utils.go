package pkg

import (
	"github.com/rs/zerolog/log"

	"perceptron/pkg/io"
)

type NoopWriter struct{}

func (x NoopWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

func printDataErrors(errors []io.DataError) {
	for _, err := range errors {
		log.Error().Msgf("Error parsing data at line %d: %s", err.Line, err.Error)
	}
}

