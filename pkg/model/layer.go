package model

import "math/rand"

// Layer is an ordered group of neurons fed by the same inputs. A neuron's position is the output
// component it produces.
type Layer struct {
	neurons []*Neuron
}

func NewLayer(numNeurons, numInputs int, rnd *rand.Rand) *Layer {
	neurons := make([]*Neuron, numNeurons)
	for i := range neurons {
		neurons[i] = NewNeuron(numInputs, rnd)
	}
	return &Layer{neurons: neurons}
}

func (l *Layer) Forward(inputs []float64, activation Activation) []float64 {
	outputs := make([]float64, len(l.neurons))
	for i, n := range l.neurons {
		outputs[i] = n.Forward(inputs, activation)
	}
	return outputs
}

// Outputs collects the outputs stored by the last Forward call.
func (l *Layer) Outputs() []float64 {
	outputs := make([]float64, len(l.neurons))
	for i, n := range l.neurons {
		outputs[i] = n.output
	}
	return outputs
}

func (l *Layer) Neuron(i int) *Neuron {
	return l.neurons[i]
}

func (l *Layer) Size() int {
	return len(l.neurons)
}

func (l *Layer) weights() [][]float64 {
	result := make([][]float64, len(l.neurons))
	for i, n := range l.neurons {
		result[i] = n.Weights()
	}
	return result
}
