// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package predict

import (
	"fmt"
	"time"
)

// QuintalKg is the number of kilograms in a quintal.
const QuintalKg = 100

// Artifact is a trained price model for one commodity together with the
// ordered feature names it was trained on.
type Artifact struct {
	// Commodity is the crop this model predicts prices for.
	Commodity string

	// FeatureNames lists model inputs in the order the model expects them.
	FeatureNames []string

	// Model is the regression handle.
	Model Regressor

	// Version is the artifact version in the store.
	Version int

	// TrainedAt is when the model was fit, if known.
	TrainedAt time.Time
}

// Validate checks that the artifact is usable.
func (a *Artifact) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: nil artifact", ErrInvalidArtifact)
	}
	if a.Commodity == "" {
		return fmt.Errorf("%w: missing commodity", ErrInvalidArtifact)
	}
	if a.Model == nil {
		return fmt.Errorf("%w: %s has no model", ErrInvalidArtifact, a.Commodity)
	}
	if len(a.FeatureNames) == 0 {
		return fmt.Errorf("%w: %s has no feature names", ErrInvalidArtifact, a.Commodity)
	}

	seen := make(map[string]struct{}, len(a.FeatureNames))
	for _, name := range a.FeatureNames {
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %s lists feature %q twice", ErrInvalidArtifact, a.Commodity, name)
		}
		seen[name] = struct{}{}
	}

	if n := a.Model.NumFeatures(); n != len(a.FeatureNames) {
		return fmt.Errorf("%w: %s model takes %d features but lists %d names",
			ErrInvalidArtifact, a.Commodity, n, len(a.FeatureNames))
	}
	return a.Model.Validate()
}

// Vector orders feature values as the model expects them.
// Extra keys are ignored; missing keys yield a *FeatureMismatchError.
func (a *Artifact) Vector(features map[string]float64) ([]float64, error) {
	x := make([]float64, len(a.FeatureNames))
	var missing []string
	for i, name := range a.FeatureNames {
		v, ok := features[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		x[i] = v
	}
	if len(missing) > 0 {
		return nil, &FeatureMismatchError{Commodity: a.Commodity, Missing: missing}
	}
	return x, nil
}

// Predict returns the predicted modal price per quintal.
func (a *Artifact) Predict(features map[string]float64) (float64, error) {
	x, err := a.Vector(features)
	if err != nil {
		return 0, err
	}
	y, err := a.Model.Predict(x)
	if err != nil {
		return 0, fmt.Errorf("predict %s: %w", a.Commodity, err)
	}
	return y, nil
}

// PredictPerKg returns the predicted price per kilogram.
func (a *Artifact) PredictPerKg(features map[string]float64) (float64, error) {
	perQuintal, err := a.Predict(features)
	if err != nil {
		return 0, err
	}
	return perQuintal / QuintalKg, nil
}
