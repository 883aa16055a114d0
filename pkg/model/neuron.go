package model

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Neuron holds its incoming weights, with the bias weight at index 0, together with the output and
// gradient of the last forward and backward pass.
type Neuron struct {
	weights  []float64
	output   float64
	gradient float64
}

func NewNeuron(numInputs int, rnd *rand.Rand) *Neuron {
	weights := make([]float64, numInputs+1)
	for i := range weights {
		weights[i] = rnd.Float64() - 0.5
	}
	return &Neuron{weights: weights}
}

func newNeuronWithWeights(weights []float64) *Neuron {
	w := make([]float64, len(weights))
	copy(w, weights)
	return &Neuron{weights: w}
}

// Forward computes and stores the neuron output for inputs.
func (n *Neuron) Forward(inputs []float64, activation Activation) float64 {
	net := n.weights[0] + floats.Dot(n.weights[1:], inputs)
	n.output = activation.Activate(net)
	return n.output
}

// OutputGradient sets the error signal of an output layer neuron.
func (n *Neuron) OutputGradient(target float64, activation Activation) {
	n.gradient = (target - n.output) * activation.Derivative(n.output)
}

// HiddenGradient sets the error signal of the neuron at position index of a hidden layer. The
// gradients of next must already be up to date and its weights must not have been updated yet.
func (n *Neuron) HiddenGradient(next *Layer, index int, activation Activation) {
	sum := 0.0
	for _, downstream := range next.neurons {
		// weight index+1 connects downstream back to this neuron, index 0 is the bias
		sum += downstream.gradient * downstream.weights[index+1]
	}
	n.gradient = sum * activation.Derivative(n.output)
}

// UpdateWeights applies the delta rule using the inputs that produced the stored output.
func (n *Neuron) UpdateWeights(inputs []float64, learningRate float64) {
	step := learningRate * n.gradient
	n.weights[0] += step
	floats.AddScaled(n.weights[1:], step, inputs)
}

func (n *Neuron) Output() float64 {
	return n.output
}

func (n *Neuron) Gradient() float64 {
	return n.gradient
}

func (n *Neuron) Weight(i int) float64 {
	return n.weights[i]
}

// Weights returns a copy of the weight vector.
func (n *Neuron) Weights() []float64 {
	result := make([]float64, len(n.weights))
	copy(result, n.weights)
	return result
}

func (n *Neuron) NumInputs() int {
	return len(n.weights) - 1
}
