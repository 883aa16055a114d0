package model

import (
	"math/rand"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrTooManyClasses = errors.New("more class labels than output neurons")
	ErrUnknownLabel   = errors.New("unknown class label")
)

// Network is a perceptron with one hidden layer trained by online backpropagation.
type Network struct {
	hidden       *Layer
	output       *Layer
	activation   Activation
	learningRate float64

	// min and max are copied from the training data and used for every normalization
	min []float64
	max []float64

	// classes maps each training label to the position of the 1.0 in its target vector
	classes NameMap
}

// NewNetwork builds a network sized for data, which provides the normalization statistics and
// the sorted label list.
func NewNetwork(numInputs, numHidden, numOutputs int, activation Activation, learningRate float64,
	data *Dataset, rnd *rand.Rand) (*Network, error) {

	if numInputs <= 0 || numHidden <= 0 || numOutputs <= 0 {
		return nil, errors.Errorf("layer sizes must be positive, got %d/%d/%d", numInputs, numHidden, numOutputs)
	}
	if data.NumFeatures() != numInputs {
		return nil, errors.Wrapf(ErrArity, "network has %d inputs, data has %d features", numInputs, data.NumFeatures())
	}
	labels := data.Labels()
	if len(labels) > numOutputs {
		return nil, errors.Wrapf(ErrTooManyClasses, "%d labels, %d outputs", len(labels), numOutputs)
	}

	n := &Network{
		hidden:       NewLayer(numHidden, numInputs, rnd),
		output:       NewLayer(numOutputs, numHidden, rnd),
		activation:   activation,
		learningRate: learningRate,
		min:          data.Min(),
		max:          data.Max(),
		classes:      NewSortedNameMap(labels),
	}
	log.Debug().Strs("Classes", n.classes.Names()).Int("Outputs", numOutputs).Msg("class map created")
	return n, nil
}

// Normalize scales each feature into [0, 1] using the training min and max. Constant features map
// to 0.
func (n *Network) Normalize(inputs []float64) []float64 {
	result := make([]float64, len(inputs))
	for i, value := range inputs {
		span := n.max[i] - n.min[i]
		if span == 0 {
			result[i] = 0.0
			continue
		}
		result[i] = (value - n.min[i]) / span
	}
	return result
}

func (n *Network) Feedforward(inputs []float64) []float64 {
	hidden := n.hidden.Forward(inputs, n.activation)
	return n.output.Forward(hidden, n.activation)
}

// Backpropagate computes all gradients of the last Feedforward call for target and only then
// updates the weights, output layer first.
func (n *Network) Backpropagate(inputs, target []float64) {
	for i, neuron := range n.output.neurons {
		neuron.OutputGradient(target[i], n.activation)
	}
	for i, neuron := range n.hidden.neurons {
		neuron.HiddenGradient(n.output, i, n.activation)
	}

	hiddenOutputs := n.hidden.Outputs()
	for _, neuron := range n.output.neurons {
		neuron.UpdateWeights(hiddenOutputs, n.learningRate)
	}
	for _, neuron := range n.hidden.neurons {
		neuron.UpdateWeights(inputs, n.learningRate)
	}
}

// Target returns the one-hot vector of label.
func (n *Network) Target(label string) ([]float64, error) {
	index, ok := n.classes.ContainsName(label)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownLabel, "%q", label)
	}
	target := make([]float64, n.output.Size())
	target[index] = 1.0
	return target, nil
}

// Classify returns the label of the largest output. Ties go to the lowest index, and outputs
// without an assigned label yield an empty string.
func (n *Network) Classify(outputs []float64) string {
	index := floats.MaxIdx(outputs)
	label, ok := n.classes.IndexToName[index]
	if !ok {
		return ""
	}
	return label
}

func (n *Network) SetLearningRate(rate float64) {
	n.learningRate = rate
	log.Info().Float64("LearningRate", rate).Msg("learning rate changed")
}

func (n *Network) LearningRate() float64 {
	return n.learningRate
}

func (n *Network) Activation() Activation {
	return n.activation
}

// Labels returns the class labels ordered by output index.
func (n *Network) Labels() []string {
	return n.classes.Names()
}

func (n *Network) Min() []float64 {
	return append([]float64(nil), n.min...)
}

func (n *Network) Max() []float64 {
	return append([]float64(nil), n.max...)
}

func (n *Network) NumInputs() int {
	return n.hidden.neurons[0].NumInputs()
}

func (n *Network) Hidden() *Layer {
	return n.hidden
}

func (n *Network) Output() *Layer {
	return n.output
}
