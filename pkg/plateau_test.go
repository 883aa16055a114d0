package pkg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlateauDetector_IdenticalErrors(t *testing.T) {
	d := newPlateauDetector()
	for i := 0; i < PlateauWindow-1; i++ {
		_, full, plateau := d.observe(0.25)
		require.False(t, full)
		require.False(t, plateau)
	}
	stdDev, full, plateau := d.observe(0.25)
	require.True(t, full)
	require.Equal(t, 0.0, stdDev)
	require.True(t, plateau)
}

func TestPlateauDetector_Window(t *testing.T) {
	d := newPlateauDetector()
	for i := 0; i < PlateauWindow; i++ {
		_, _, plateau := d.observe(float64(i))
		require.False(t, plateau)
	}
	// the oldest values leave the window
	for i := 0; i < PlateauWindow-1; i++ {
		_, _, plateau := d.observe(1)
		require.False(t, plateau)
	}
	stdDev, _, plateau := d.observe(1)
	require.Equal(t, 0.0, stdDev)
	require.True(t, plateau)
	require.Len(t, d.errors, PlateauWindow)
}

func TestPlateauDetector_Threshold(t *testing.T) {
	d := newPlateauDetector()
	values := []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1 + 1e-4}
	var plateau bool
	for _, v := range values {
		_, _, plateau = d.observe(v)
	}
	require.False(t, plateau)

	d.reset()
	values[9] = 0.1 + 1e-6
	for _, v := range values {
		_, _, plateau = d.observe(v)
	}
	require.True(t, plateau)
}

func TestPlateauDetector_Reset(t *testing.T) {
	d := newPlateauDetector()
	for i := 0; i < PlateauWindow; i++ {
		d.observe(0.5)
	}
	d.reset()
	_, full, plateau := d.observe(0.5)
	require.False(t, full)
	require.False(t, plateau)
}

func TestParseDecision(t *testing.T) {
	for _, d := range []Decision{Stop, Continue, ReduceLearningRate} {
		parsed, err := ParseDecision(d.String())
		require.NoError(t, err)
		require.Equal(t, d, parsed)
	}
	parsed, err := ParseDecision("R\n")
	require.NoError(t, err)
	require.Equal(t, ReduceLearningRate, parsed)
	_, err = ParseDecision("pause")
	require.Error(t, err)
}
