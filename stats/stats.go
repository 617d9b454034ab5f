// Package stats computes the summary statistics a widget displays.
package stats

// Statistic names an aggregate over a Dataset.
type Statistic string

const (
	StatCount Statistic = "count" // Number of values
	StatSum   Statistic = "sum"   // Arithmetic sum, 0 for no values
	StatMean  Statistic = "mean"  // Sum divided by count, NaN for no values
)

// ValidStatistics is the canonical list of recognized statistics.
var ValidStatistics = []Statistic{StatCount, StatSum, StatMean}

// StatisticDescriptions provides help text for each statistic.
var StatisticDescriptions = map[Statistic]string{
	StatCount: "Number of values",
	StatSum:   "Sum of all values",
	StatMean:  "Arithmetic mean (sum / count)",
}

// IsValidStatistic returns true if s is a recognized statistic.
func IsValidStatistic(s Statistic) bool {
	for _, v := range ValidStatistics {
		if v == s {
			return true
		}
	}
	return false
}

// Dataset is an ordered sequence of values. Order does not affect any
// supported statistic.
type Dataset []float64

// Count returns the number of values.
func Count(data Dataset) float64 {
	return float64(len(data))
}

// Sum returns the arithmetic sum of data, starting from 0.
func Sum(data Dataset) float64 {
	var acc float64
	for _, v := range data {
		acc += v
	}
	return acc
}

// Mean returns Sum(data) / Count(data). An empty dataset yields NaN.
func Mean(data Dataset) float64 {
	return Sum(data) / Count(data)
}

// Compute returns the statistic s over data.
// Unrecognized statistics yield 0.
func Compute(s Statistic, data Dataset) float64 {
	switch s {
	case StatCount:
		return Count(data)
	case StatSum:
		return Sum(data)
	case StatMean:
		return Mean(data)
	default:
		return 0
	}
}
