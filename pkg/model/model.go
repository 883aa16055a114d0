package model

import "github.com/pkg/errors"

// Model is the persisted form of a trained Network.
type Model struct {
	Activation   Activation
	LearningRate float64

	// HiddenWeights and OutputWeights hold one weight vector per neuron, bias first
	HiddenWeights [][]float64
	OutputWeights [][]float64

	Min    []float64
	Max    []float64
	Labels []string
}

// Model captures the current weights and normalization statistics of the network.
func (n *Network) Model() *Model {
	return &Model{
		Activation:    n.activation,
		LearningRate:  n.learningRate,
		HiddenWeights: n.hidden.weights(),
		OutputWeights: n.output.weights(),
		Min:           n.Min(),
		Max:           n.Max(),
		Labels:        n.Labels(),
	}
}

// Network rebuilds a network from a saved model.
func (m *Model) Network() (*Network, error) {
	if len(m.HiddenWeights) == 0 || len(m.OutputWeights) == 0 {
		return nil, errors.New("model has an empty layer")
	}
	if len(m.Min) != len(m.Max) {
		return nil, errors.Wrapf(ErrArity, "min has %d entries, max has %d", len(m.Min), len(m.Max))
	}
	if len(m.Labels) > len(m.OutputWeights) {
		return nil, errors.Wrapf(ErrTooManyClasses, "%d labels, %d outputs", len(m.Labels), len(m.OutputWeights))
	}
	hidden, err := layerFromWeights(m.HiddenWeights, len(m.Min))
	if err != nil {
		return nil, errors.Wrap(err, "hidden layer")
	}
	output, err := layerFromWeights(m.OutputWeights, len(m.HiddenWeights))
	if err != nil {
		return nil, errors.Wrap(err, "output layer")
	}
	classes := NewNameMap()
	for i, label := range m.Labels {
		classes.Set(label, i)
	}
	return &Network{
		hidden:       hidden,
		output:       output,
		activation:   m.Activation,
		learningRate: m.LearningRate,
		min:          append([]float64(nil), m.Min...),
		max:          append([]float64(nil), m.Max...),
		classes:      classes,
	}, nil
}

func layerFromWeights(weights [][]float64, numInputs int) (*Layer, error) {
	neurons := make([]*Neuron, len(weights))
	for i, w := range weights {
		if len(w) != numInputs+1 {
			return nil, errors.Wrapf(ErrArity, "neuron %d has %d weights, expected %d", i, len(w), numInputs+1)
		}
		neurons[i] = newNeuronWithWeights(w)
	}
	return &Layer{neurons: neurons}, nil
}
