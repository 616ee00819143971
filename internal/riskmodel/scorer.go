package riskmodel

import (
	"github.com/coverledger/coverledger-backend/internal/domain/errors"
	"github.com/coverledger/coverledger-backend/internal/domain/risk"
)

// Scorer evaluates applicant risk with a pretrained model plus the
// deterministic rule layer. It is immutable after construction and safe for
// concurrent use; handlers receive it by reference, there is no package-level
// model state.
type Scorer struct {
	artifact *Artifact
}

// Result is one scoring outcome.
type Result struct {
	Score   float64  `json:"risk_score"`
	Factors []string `json:"risk_factors"`
	Version string   `json:"model_version,omitempty"`
}

// NewScorer wraps an already-loaded artifact.
func NewScorer(artifact *Artifact) (*Scorer, error) {
	if artifact == nil {
		return nil, errors.ErrModelUnavailable
	}
	if err := artifact.Validate(); err != nil {
		return nil, errors.NewRiskAssessmentError("MODEL_UNAVAILABLE", "risk model artifact is invalid").WithCause(err)
	}
	if artifact.FeatureCount != risk.FeatureCount {
		return nil, errors.NewRiskAssessmentError("MODEL_UNAVAILABLE", "risk model was trained on a different feature set")
	}
	return &Scorer{artifact: artifact}, nil
}

// LoadScorer loads the model artifact from disk. A missing or corrupt
// artifact is a hard failure; no fallback score is invented.
func LoadScorer(path string) (*Scorer, error) {
	artifact, err := LoadArtifact(path)
	if err != nil {
		return nil, errors.NewRiskAssessmentError("MODEL_UNAVAILABLE", "risk model artifact is unavailable").WithCause(err)
	}
	return NewScorer(artifact)
}

// Version returns the loaded artifact's version tag.
func (s *Scorer) Version() string {
	return s.artifact.Version
}

// Score normalizes the applicant features, runs the classifier, and overlays
// the rule flags. Flags are a strict function of the rule thresholds and do
// not depend on the model output.
func (s *Scorer) Score(features risk.Features) (Result, error) {
	scaled, err := s.artifact.Scaler.Transform(features.Vector())
	if err != nil {
		return Result{}, errors.NewRiskAssessmentError("SCORING_FAILED", "failed to normalize features").WithCause(err)
	}

	p, err := s.artifact.Classifier.PredictProba(scaled)
	if err != nil {
		return Result{}, errors.NewRiskAssessmentError("SCORING_FAILED", "failed to score features").WithCause(err)
	}

	return Result{
		Score:   p,
		Factors: features.Flags(),
		Version: s.artifact.Version,
	}, nil
}
