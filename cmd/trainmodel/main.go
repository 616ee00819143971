// Command trainmodel fits the risk model on a labeled historical dataset and
// writes the versioned artifact the API loads at startup.
//
// The input CSV needs a header row with the columns:
//
//	age,claim_history,risk_factors,coverage_amount,income,credit_score,occupation_risk,health_score,high_risk
//
// high_risk is the binary label (0 or 1); the remaining columns are the
// feature vector in training order.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/coverledger/coverledger-backend/internal/domain/risk"
	"github.com/coverledger/coverledger-backend/internal/riskmodel"
)

func main() {
	var (
		dataPath     = flag.String("data", "", "Path to labeled training CSV")
		outPath      = flag.String("out", "models/risk_assessment_model.json", "Artifact output path")
		version      = flag.String("version", "", "Model version tag (required)")
		learningRate = flag.Float64("learning-rate", 0, "Override learning rate (0 = default)")
		epochs       = flag.Int("epochs", 0, "Override training epochs (0 = default)")
	)
	flag.Parse()

	if *dataPath == "" || *version == "" {
		flag.Usage()
		os.Exit(2)
	}

	samples, err := loadSamples(*dataPath)
	if err != nil {
		slog.Error("failed to load training data", "path", *dataPath, "error", err)
		os.Exit(1)
	}
	slog.Info("training data loaded", "samples", len(samples), "path", *dataPath)

	opts := riskmodel.DefaultTrainingOptions()
	if *learningRate > 0 {
		opts.LearningRate = *learningRate
	}
	if *epochs > 0 {
		opts.Epochs = *epochs
	}

	artifact, err := riskmodel.Train(samples, *version, opts)
	if err != nil {
		slog.Error("training failed", "error", err)
		os.Exit(1)
	}

	if err := artifact.Save(*outPath); err != nil {
		slog.Error("failed to save artifact", "path", *outPath, "error", err)
		os.Exit(1)
	}

	slog.Info("model artifact written",
		"path", *outPath,
		"version", artifact.Version,
		"features", artifact.FeatureCount,
		"trained_at", artifact.TrainedAt)
}

var expectedColumns = []string{
	"age", "claim_history", "risk_factors", "coverage_amount",
	"income", "credit_score", "occupation_risk", "health_score", "high_risk",
}

func loadSamples(path string) ([]riskmodel.LabeledSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parseSamples(f)
}

func parseSamples(r io.Reader) ([]riskmodel.LabeledSample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(expectedColumns)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range expectedColumns {
		if header[i] != col {
			return nil, fmt.Errorf("column %d is %q, want %q", i, header[i], col)
		}
	}

	var samples []riskmodel.LabeledSample
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		values := make([]float64, len(record))
		for i, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d, column %s: %w", line, expectedColumns[i], err)
			}
			values[i] = v
		}

		label := values[len(values)-1]
		if label != 0 && label != 1 {
			return nil, fmt.Errorf("line %d: high_risk must be 0 or 1, got %v", line, label)
		}

		samples = append(samples, riskmodel.LabeledSample{
			Features: risk.Features{
				Age:            values[0],
				ClaimHistory:   values[1],
				RiskFactor:     values[2],
				CoverageAmount: values[3],
				Income:         values[4],
				CreditScore:    values[5],
				OccupationRisk: values[6],
				HealthScore:    values[7],
			},
			HighRisk: label == 1,
		})
	}

	return samples, nil
}
