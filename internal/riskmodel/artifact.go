package riskmodel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Artifact is the single versioned persistence unit for the risk model: the
// fitted scaler and classifier travel together so they can never drift apart.
type Artifact struct {
	Version      string          `json:"version"`
	TrainedAt    time.Time       `json:"trained_at"`
	FeatureCount int             `json:"feature_count"`
	Scaler       *StandardScaler `json:"scaler"`
	Classifier   *Classifier     `json:"classifier"`
}

// Validate checks internal consistency of a loaded artifact.
func (a *Artifact) Validate() error {
	if a.Version == "" {
		return fmt.Errorf("artifact has no version")
	}
	if a.FeatureCount <= 0 {
		return fmt.Errorf("artifact feature count %d is invalid", a.FeatureCount)
	}
	if a.Scaler == nil || a.Classifier == nil {
		return fmt.Errorf("artifact is missing scaler or classifier")
	}
	if err := a.Scaler.validate(a.FeatureCount); err != nil {
		return err
	}
	if len(a.Classifier.Weights) != a.FeatureCount {
		return fmt.Errorf("classifier dimension %d does not match feature count %d", len(a.Classifier.Weights), a.FeatureCount)
	}
	return a.Classifier.validate()
}

// Save writes the artifact atomically (write temp file, then rename).
func (a *Artifact) Save(path string) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid artifact: %w", err)
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".riskmodel-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename artifact into place: %w", err)
	}
	return nil
}

// LoadArtifact reads and validates a model artifact from disk.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("artifact %s is corrupt: %w", path, err)
	}
	return &a, nil
}
