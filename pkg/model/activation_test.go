package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActivation_Activate(t *testing.T) {
	tests := []struct {
		activation Activation
		net        float64
		want       float64
	}{
		{Linear, 0, 0},
		{Linear, 5, 0.5},
		{Linear, -3, -0.3},
		{Logistic, 0, 0.5},
		{Logistic, 2, 1 / (1 + math.Exp(-2))},
		{HyperbolicTangent, 0, 0},
		{HyperbolicTangent, 1, math.Tanh(1)},
	}
	for _, tt := range tests {
		require.InDelta(t, tt.want, tt.activation.Activate(tt.net), 1e-12, "%s(%g)", tt.activation, tt.net)
	}
}

func TestActivation_Derivative(t *testing.T) {
	tests := []struct {
		activation Activation
		output     float64
		want       float64
	}{
		{Linear, 0.7, 0.1},
		{Linear, -4, 0.1},
		{Logistic, 0.5, 0.25},
		{Logistic, 0.9, 0.09},
		{HyperbolicTangent, 0, 1},
		{HyperbolicTangent, 0.5, 0.75},
	}
	for _, tt := range tests {
		require.InDelta(t, tt.want, tt.activation.Derivative(tt.output), 1e-12, "%s'(%g)", tt.activation, tt.output)
	}
}

func TestParseActivation(t *testing.T) {
	for _, a := range []Activation{Linear, Logistic, HyperbolicTangent} {
		parsed, err := ParseActivation(a.String())
		require.NoError(t, err)
		require.Equal(t, a, parsed)
	}
	parsed, err := ParseActivation(" Sigmoid ")
	require.NoError(t, err)
	require.Equal(t, Logistic, parsed)

	_, err = ParseActivation("relu")
	require.Error(t, err)
}
