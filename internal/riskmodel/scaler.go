package riskmodel

import (
	"fmt"
	"math"
)

// StandardScaler normalizes features to zero mean and unit variance. The
// statistics are fit offline on historical training data and reused verbatim
// at inference time.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitScaler computes per-feature mean and standard deviation over the
// training matrix. Features with zero variance get a unit deviation so that
// transform never divides by zero.
func FitScaler(samples [][]float64) (*StandardScaler, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("cannot fit scaler on empty training set")
	}

	dim := len(samples[0])
	mean := make([]float64, dim)
	std := make([]float64, dim)

	for _, row := range samples {
		if len(row) != dim {
			return nil, fmt.Errorf("inconsistent feature dimension: got %d, want %d", len(row), dim)
		}
		for j, v := range row {
			mean[j] += v
		}
	}
	n := float64(len(samples))
	for j := range mean {
		mean[j] /= n
	}

	for _, row := range samples {
		for j, v := range row {
			d := v - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			std[j] = 1
		}
	}

	return &StandardScaler{Mean: mean, Std: std}, nil
}

// Transform scales a single feature vector using the fitted statistics.
func (s *StandardScaler) Transform(features []float64) ([]float64, error) {
	if len(features) != len(s.Mean) {
		return nil, fmt.Errorf("feature dimension mismatch: got %d, want %d", len(features), len(s.Mean))
	}

	out := make([]float64, len(features))
	for j, v := range features {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out, nil
}

// TransformAll scales a whole matrix.
func (s *StandardScaler) TransformAll(samples [][]float64) ([][]float64, error) {
	out := make([][]float64, len(samples))
	for i, row := range samples {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}

func (s *StandardScaler) validate(dim int) error {
	if len(s.Mean) != dim || len(s.Std) != dim {
		return fmt.Errorf("scaler dimension %d/%d does not match model dimension %d", len(s.Mean), len(s.Std), dim)
	}
	for j, v := range s.Std {
		if v <= 0 {
			return fmt.Errorf("scaler std[%d] = %v is not positive", j, v)
		}
	}
	return nil
}
