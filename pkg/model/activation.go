package model

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Activation selects one of the fixed transfer functions shared by every neuron of a network.
type Activation int

const (
	Linear Activation = iota
	Logistic
	HyperbolicTangent
)

// Activate computes the neuron output for the given net input.
func (a Activation) Activate(net float64) float64 {
	switch a {
	case Linear:
		return net / 10.0
	case Logistic:
		return 1.0 / (1.0 + math.Exp(-net))
	case HyperbolicTangent:
		return math.Tanh(net)
	default:
		panic(errors.Errorf("unknown activation %d", int(a)))
	}
}

// Derivative returns the slope of the activation expressed in terms of its output.
func (a Activation) Derivative(output float64) float64 {
	switch a {
	case Linear:
		return 1.0 / 10.0
	case Logistic:
		return output * (1.0 - output)
	case HyperbolicTangent:
		return 1.0 - output*output
	default:
		panic(errors.Errorf("unknown activation %d", int(a)))
	}
}

func (a Activation) String() string {
	switch a {
	case Linear:
		return "linear"
	case Logistic:
		return "logistic"
	case HyperbolicTangent:
		return "tanh"
	default:
		return "unknown"
	}
}

// ParseActivation maps a command line name to an Activation.
func ParseActivation(name string) (Activation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linear":
		return Linear, nil
	case "logistic", "sigmoid":
		return Logistic, nil
	case "tanh", "hyperbolic":
		return HyperbolicTangent, nil
	}
	return 0, errors.Errorf("unknown activation function %q", name)
}
