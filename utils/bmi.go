package utils

import (
	"errors"
	"math"
)

// Accepted body measurements. Request bindings use the same bounds.
const (
	MinHeightCm = 50
	MaxHeightCm = 250
	MinWeightKg = 10
	MaxWeightKg = 400
)

var ErrBodyMeasure = errors.New("utils: body measurements out of range")

// CalculateBMI takes centimeters and kilograms and rounds to two decimals.
func CalculateBMI(heightCm, weightKg float64) (float64, error) {
	if heightCm < MinHeightCm || heightCm > MaxHeightCm || weightKg < MinWeightKg || weightKg > MaxWeightKg {
		return 0, ErrBodyMeasure
	}
	m := heightCm / 100
	return Round2(weightKg / (m * m)), nil
}

// BMICategory uses the WHO adult bands; an unknown BMI has no category.
func BMICategory(bmi float64) string {
	if bmi <= 0 {
		return ""
	}
	if bmi < 18.5 {
		return "Thiếu cân"
	}
	if bmi < 25 {
		return "Bình thường"
	}
	if bmi < 30 {
		return "Thừa cân"
	}
	return "Béo phì"
}

func Round2(v float64) float64 { return math.Round(v*100) / 100 }
