package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBMI(t *testing.T) {
	bmi, err := CalculateBMI(170, 65)
	require.NoError(t, err)
	assert.Equal(t, 22.49, bmi)

	_, err = CalculateBMI(0, 65)
	assert.ErrorIs(t, err, ErrBodyMeasure)
	_, err = CalculateBMI(170, 1000)
	assert.ErrorIs(t, err, ErrBodyMeasure)
}

func TestBMICategory(t *testing.T) {
	cases := map[float64]string{
		0:     "",
		17.9:  "Thiếu cân",
		18.5:  "Bình thường",
		24.99: "Bình thường",
		25:    "Thừa cân",
		30:    "Béo phì",
	}
	for bmi, want := range cases {
		assert.Equal(t, want, BMICategory(bmi), "bmi %v", bmi)
	}
}
