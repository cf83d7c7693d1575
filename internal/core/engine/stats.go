package engine

import (
	"math"
	"sort"
)

// mean - среднее арифметическое, 0 для пустого среза
func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// median - медиана, 0 для пустого среза
func median(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// percentileRank - доля значений строго меньше value, в процентах с одним
// знаком после запятой. Значение, равное value, "меньшим" не считается.
func percentileRank(value float64, data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	below := 0
	for _, v := range data {
		if v < value {
			below++
		}
	}
	return round1(float64(below) / float64(len(data)) * 100)
}

// round1 округляет до одного знака после запятой
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
