package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newTestNetwork(t *testing.T, activation Activation) *Network {
	d, err := NewDataset(testInstances())
	require.NoError(t, err)
	n, err := NewNetwork(3, 4, 3, activation, 0.1, d, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	return n
}

// fixedNetwork has 2 inputs, 2 hidden and 2 output neurons with known weights.
func fixedNetwork(t *testing.T, activation Activation) *Network {
	m := &Model{
		Activation:   activation,
		LearningRate: 0.5,
		HiddenWeights: [][]float64{
			{0.1, 0.2, -0.3},
			{-0.2, 0.4, 0.1},
		},
		OutputWeights: [][]float64{
			{0.05, 0.3, -0.1},
			{-0.1, -0.2, 0.25},
		},
		Min:    []float64{0, 0},
		Max:    []float64{1, 1},
		Labels: []string{"A", "B"},
	}
	n, err := m.Network()
	require.NoError(t, err)
	return n
}

func TestNewNetwork_Weights(t *testing.T) {
	n := newTestNetwork(t, Logistic)
	require.Equal(t, 4, n.Hidden().Size())
	require.Equal(t, 3, n.Output().Size())
	for _, layer := range []*Layer{n.Hidden(), n.Output()} {
		for i := 0; i < layer.Size(); i++ {
			for _, w := range layer.Neuron(i).Weights() {
				require.True(t, w >= -0.5 && w < 0.5, "weight %g out of range", w)
			}
		}
	}
	require.Len(t, n.Hidden().Neuron(0).Weights(), 4)
	require.Len(t, n.Output().Neuron(0).Weights(), 5)
}

func TestNewNetwork_TooManyClasses(t *testing.T) {
	d, err := NewDataset(testInstances())
	require.NoError(t, err)
	_, err = NewNetwork(3, 2, 2, Logistic, 0.1, d, rand.New(rand.NewSource(1)))
	require.Equal(t, ErrTooManyClasses, errors.Cause(err))

	_, err = NewNetwork(2, 2, 3, Logistic, 0.1, d, rand.New(rand.NewSource(1)))
	require.Equal(t, ErrArity, errors.Cause(err))
}

func TestNetwork_Normalize(t *testing.T) {
	n := newTestNetwork(t, Logistic)
	for _, inst := range testInstances() {
		normalized := n.Normalize(inst.Features())
		require.Len(t, normalized, 3)
		require.True(t, normalized[0] >= 0 && normalized[0] <= 1)
		require.True(t, normalized[1] >= 0 && normalized[1] <= 1)
		// third column is constant
		require.Equal(t, 0.0, normalized[2])
		require.False(t, math.IsNaN(normalized[2]))
	}
	require.Equal(t, []float64{1, 0, 0}, n.Normalize([]float64{3, -8, 5}))
	require.Equal(t, []float64{0.5, 0.5, 0}, n.Normalize([]float64{1.5, -4.5, 5}))
}

func TestNetwork_Target(t *testing.T) {
	n := newTestNetwork(t, Logistic)
	positions := map[int]string{}
	for _, label := range []string{"CA", "CB", "CC"} {
		target, err := n.Target(label)
		require.NoError(t, err)
		require.Len(t, target, 3)
		ones := 0
		for i, v := range target {
			switch v {
			case 1.0:
				ones++
				require.NotContains(t, positions, i)
				positions[i] = label
			case 0.0:
			default:
				t.Fatalf("unexpected target value %g", v)
			}
		}
		require.Equal(t, 1, ones)
	}
	require.Equal(t, map[int]string{0: "CA", 1: "CB", 2: "CC"}, positions)

	_, err := n.Target("CD")
	require.Equal(t, ErrUnknownLabel, errors.Cause(err))
}

func TestNetwork_FeedforwardIsDeterministic(t *testing.T) {
	n := fixedNetwork(t, HyperbolicTangent)
	input := []float64{0.3, 0.8}
	first := n.Feedforward(input)
	second := n.Feedforward(input)
	require.Equal(t, first, second)

	h0 := math.Tanh(0.1 + 0.2*0.3 - 0.3*0.8)
	h1 := math.Tanh(-0.2 + 0.4*0.3 + 0.1*0.8)
	require.InDelta(t, math.Tanh(0.05+0.3*h0-0.1*h1), first[0], 1e-12)
	require.InDelta(t, math.Tanh(-0.1-0.2*h0+0.25*h1), first[1], 1e-12)
}

func TestNetwork_OutputGradientSign(t *testing.T) {
	n := fixedNetwork(t, Logistic)
	input := []float64{1, 0.5}
	outputs := n.Feedforward(input)
	target, err := n.Target("A")
	require.NoError(t, err)
	require.True(t, target[0] > outputs[0])

	before := n.Output().Neuron(0).Weights()
	n.Backpropagate(input, target)

	require.True(t, n.Output().Neuron(0).Gradient() > 0)
	after := n.Output().Neuron(0).Weights()
	for i := range before {
		require.True(t, after[i] > before[i], "weight %d did not increase", i)
	}
	require.True(t, n.Output().Neuron(1).Gradient() < 0)
}

func TestNetwork_HiddenGradientUsesPreUpdateWeights(t *testing.T) {
	n := fixedNetwork(t, Logistic)
	input := []float64{0.2, 0.9}
	n.Feedforward(input)
	hiddenOutputs := n.Hidden().Outputs()
	outputWeights := n.Output().weights()
	hiddenWeights := n.Hidden().weights()
	target := []float64{0, 1}

	n.Backpropagate(input, target)

	outGrad := []float64{n.Output().Neuron(0).Gradient(), n.Output().Neuron(1).Gradient()}
	for i := 0; i < 2; i++ {
		sum := outGrad[0]*outputWeights[0][i+1] + outGrad[1]*outputWeights[1][i+1]
		want := sum * hiddenOutputs[i] * (1 - hiddenOutputs[i])
		require.InDelta(t, want, n.Hidden().Neuron(i).Gradient(), 1e-15)

		// hidden weights move along the normalized inputs
		got := n.Hidden().Neuron(i).Weights()
		grad := n.Hidden().Neuron(i).Gradient()
		require.InDelta(t, hiddenWeights[i][0]+0.5*grad, got[0], 1e-15)
		require.InDelta(t, hiddenWeights[i][1]+0.5*grad*input[0], got[1], 1e-15)
		require.InDelta(t, hiddenWeights[i][2]+0.5*grad*input[1], got[2], 1e-15)
	}
	// output weights move along the hidden outputs
	got := n.Output().Neuron(1).Weights()
	require.InDelta(t, outputWeights[1][2]+0.5*outGrad[1]*hiddenOutputs[1], got[2], 1e-15)
}

func TestNetwork_Classify(t *testing.T) {
	n := fixedNetwork(t, Logistic)
	require.Equal(t, "A", n.Classify([]float64{0.9, 0.1}))
	require.Equal(t, "B", n.Classify([]float64{0.1, 0.9}))
	// ties go to the first index
	require.Equal(t, "A", n.Classify([]float64{0.5, 0.5}))
	require.Equal(t, "A", n.Classify([]float64{-3, -3}))
}

func TestNetwork_SetLearningRate(t *testing.T) {
	n := fixedNetwork(t, Linear)
	input := []float64{1, 1}
	target := []float64{1, 0}

	n.SetLearningRate(0)
	require.Equal(t, 0.0, n.LearningRate())
	before := n.Output().weights()
	n.Feedforward(input)
	n.Backpropagate(input, target)
	require.Equal(t, before, n.Output().weights())

	n.SetLearningRate(0.2)
	n.Feedforward(input)
	n.Backpropagate(input, target)
	require.NotEqual(t, before, n.Output().weights())
}

func TestModel_RestoresNetwork(t *testing.T) {
	n := newTestNetwork(t, HyperbolicTangent)
	input := n.Normalize([]float64{2, -3, 5})
	want := n.Feedforward(input)

	restored, err := n.Model().Network()
	require.NoError(t, err)
	require.Equal(t, want, restored.Feedforward(input))
	require.Equal(t, n.Labels(), restored.Labels())
	require.Equal(t, n.Min(), restored.Min())
	require.Equal(t, 3, restored.NumInputs())

	broken := n.Model()
	broken.OutputWeights[0] = broken.OutputWeights[0][:2]
	_, err = broken.Network()
	require.Equal(t, ErrArity, errors.Cause(err))
}
