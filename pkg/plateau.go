package pkg

import (
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

const (
	PlateauWindow    = 10
	PlateauThreshold = 0.00001

	// LearningRateReduction is applied to the learning rate on a ReduceLearningRate decision.
	LearningRateReduction = 0.90
)

// Decision is the operator's answer to a plateau.
type Decision int

const (
	Stop Decision = iota
	Continue
	ReduceLearningRate
)

func (d Decision) String() string {
	switch d {
	case Stop:
		return "stop"
	case Continue:
		return "continue"
	case ReduceLearningRate:
		return "reduce"
	default:
		return "unknown"
	}
}

func ParseDecision(name string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "s", "stop":
		return Stop, nil
	case "c", "continue":
		return Continue, nil
	case "r", "reduce":
		return ReduceLearningRate, nil
	}
	return 0, errors.Errorf("unknown plateau decision %q", name)
}

// plateauDetector keeps the most recent epoch errors and reports when their sample standard
// deviation drops to the threshold.
type plateauDetector struct {
	size      int
	threshold float64
	errors    []float64
}

func newPlateauDetector() *plateauDetector {
	return &plateauDetector{size: PlateauWindow, threshold: PlateauThreshold}
}

// observe records an epoch error. The standard deviation is only meaningful once the window
// is full, in which case full is true.
func (p *plateauDetector) observe(epochError float64) (stdDev float64, full bool, plateau bool) {
	p.errors = append(p.errors, epochError)
	if len(p.errors) > p.size {
		p.errors = p.errors[1:]
	}
	if len(p.errors) < p.size {
		return 0, false, false
	}
	stdDev = stat.StdDev(p.errors, nil)
	return stdDev, true, stdDev >= 0 && stdDev <= p.threshold
}

func (p *plateauDetector) reset() {
	p.errors = p.errors[:0]
}
