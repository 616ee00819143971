package riskmodel

import (
	"fmt"
	"math"
)

// Classifier is a binary logistic-regression model over scaled features. It
// estimates the probability of the high-risk class.
type Classifier struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// TrainingOptions controls the gradient-descent fit.
type TrainingOptions struct {
	LearningRate float64
	Epochs       int
	L2           float64
}

// DefaultTrainingOptions are sane settings for the small historical datasets
// this model is trained on.
func DefaultTrainingOptions() TrainingOptions {
	return TrainingOptions{
		LearningRate: 0.1,
		Epochs:       500,
		L2:           1e-4,
	}
}

// FitClassifier trains a logistic regression on already-scaled features with
// binary labels (1 = high risk).
func FitClassifier(scaled [][]float64, labels []int, opts TrainingOptions) (*Classifier, error) {
	if len(scaled) == 0 {
		return nil, fmt.Errorf("cannot train on empty dataset")
	}
	if len(scaled) != len(labels) {
		return nil, fmt.Errorf("sample/label count mismatch: %d vs %d", len(scaled), len(labels))
	}
	for i, y := range labels {
		if y != 0 && y != 1 {
			return nil, fmt.Errorf("label[%d] = %d is not binary", i, y)
		}
	}
	if opts.LearningRate <= 0 || opts.Epochs <= 0 {
		return nil, fmt.Errorf("invalid training options: lr=%v epochs=%d", opts.LearningRate, opts.Epochs)
	}

	dim := len(scaled[0])
	c := &Classifier{Weights: make([]float64, dim)}
	n := float64(len(scaled))

	gradW := make([]float64, dim)
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		for j := range gradW {
			gradW[j] = 0
		}
		gradB := 0.0

		for i, row := range scaled {
			if len(row) != dim {
				return nil, fmt.Errorf("inconsistent feature dimension at sample %d", i)
			}
			p := c.predict(row)
			diff := p - float64(labels[i])
			for j, v := range row {
				gradW[j] += diff * v
			}
			gradB += diff
		}

		for j := range c.Weights {
			c.Weights[j] -= opts.LearningRate * (gradW[j]/n + opts.L2*c.Weights[j])
		}
		c.Bias -= opts.LearningRate * gradB / n
	}

	return c, nil
}

// PredictProba returns P(high-risk) for a scaled feature vector, clamped to
// [0,1] against floating point drift at the extremes.
func (c *Classifier) PredictProba(scaled []float64) (float64, error) {
	if len(scaled) != len(c.Weights) {
		return 0, fmt.Errorf("feature dimension mismatch: got %d, want %d", len(scaled), len(c.Weights))
	}

	p := c.predict(scaled)
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p, nil
}

func (c *Classifier) predict(scaled []float64) float64 {
	z := c.Bias
	for j, w := range c.Weights {
		z += w * scaled[j]
	}
	return sigmoid(z)
}

func (c *Classifier) validate() error {
	if len(c.Weights) == 0 {
		return fmt.Errorf("classifier has no weights")
	}
	for j, w := range c.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("classifier weight[%d] is not finite", j)
		}
	}
	if math.IsNaN(c.Bias) || math.IsInf(c.Bias, 0) {
		return fmt.Errorf("classifier bias is not finite")
	}
	return nil
}

func sigmoid(z float64) float64 {
	// split to stay numerically stable for large |z|
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
