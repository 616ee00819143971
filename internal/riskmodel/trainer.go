package riskmodel

import (
	"fmt"
	"time"

	"github.com/coverledger/coverledger-backend/internal/domain/risk"
)

// LabeledSample is one historical record for offline training.
type LabeledSample struct {
	Features risk.Features
	HighRisk bool
}

// Train fits the scaler and classifier jointly on labeled historical records
// and packages both into one versioned artifact.
func Train(samples []LabeledSample, version string, opts TrainingOptions) (*Artifact, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("training set is empty")
	}
	if version == "" {
		return nil, fmt.Errorf("model version is required")
	}

	matrix := make([][]float64, len(samples))
	labels := make([]int, len(samples))
	for i, s := range samples {
		matrix[i] = s.Features.Vector()
		if s.HighRisk {
			labels[i] = 1
		}
	}

	scaler, err := FitScaler(matrix)
	if err != nil {
		return nil, fmt.Errorf("fit scaler: %w", err)
	}

	scaled, err := scaler.TransformAll(matrix)
	if err != nil {
		return nil, fmt.Errorf("scale training set: %w", err)
	}

	classifier, err := FitClassifier(scaled, labels, opts)
	if err != nil {
		return nil, fmt.Errorf("fit classifier: %w", err)
	}

	artifact := &Artifact{
		Version:      version,
		TrainedAt:    time.Now().UTC(),
		FeatureCount: risk.FeatureCount,
		Scaler:       scaler,
		Classifier:   classifier,
	}
	if err := artifact.Validate(); err != nil {
		return nil, fmt.Errorf("trained artifact failed validation: %w", err)
	}
	return artifact, nil
}
