// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package predict

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

// linearArtifact returns a model predicting 100*price_yesterday + 10*market_lat per quintal.
func linearArtifact(commodity string) *Artifact {
	return &Artifact{
		Commodity:    commodity,
		FeatureNames: []string{"price_yesterday", "market_lat"},
		Model:        &LinearRegressor{Intercept: 0, Coefficients: []float64{100, 10}},
		Version:      1,
	}
}

func stumpEnsemble() *TreeEnsemble {
	return &TreeEnsemble{
		Features: 1,
		Trees: []RegressionTree{
			{Nodes: []TreeNode{
				{Feature: 0, Threshold: 5, Left: 1, Right: 2},
				{Feature: -1, Value: 1000},
				{Feature: -1, Value: 3000},
			}},
			{Nodes: []TreeNode{
				{Feature: -1, Value: 2000},
			}},
		},
	}
}

func TestLinearRegressor_Predict(t *testing.T) {
	m := &LinearRegressor{Intercept: 5, Coefficients: []float64{2, -1}}
	got, err := m.Predict([]float64{3, 4})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if got != 7 {
		t.Errorf("Predict() = %v, want 7", got)
	}

	if _, err := m.Predict([]float64{1}); err == nil {
		t.Error("expected error for short vector")
	}
}

func TestTreeEnsemble_Predict(t *testing.T) {
	m := stumpEnsemble()
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	tests := []struct {
		x    float64
		want float64
	}{
		{x: 1, want: 1500},
		{x: 5, want: 1500},
		{x: 9, want: 2500},
	}
	for _, tt := range tests {
		got, err := m.Predict([]float64{tt.x})
		if err != nil {
			t.Fatalf("Predict(%v) error = %v", tt.x, err)
		}
		if got != tt.want {
			t.Errorf("Predict(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestTreeEnsemble_ValidateRejectsBackEdges(t *testing.T) {
	m := &TreeEnsemble{
		Features: 1,
		Trees: []RegressionTree{{Nodes: []TreeNode{
			{Feature: 0, Threshold: 1, Left: 1, Right: 0},
			{Feature: -1, Value: 1},
		}}},
	}
	if err := m.Validate(); !errors.Is(err, ErrInvalidArtifact) {
		t.Errorf("Validate() = %v, want ErrInvalidArtifact", err)
	}
}

func TestArtifact_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *Artifact)
	}{
		{name: "missing commodity", mutate: func(a *Artifact) { a.Commodity = "" }},
		{name: "nil model", mutate: func(a *Artifact) { a.Model = nil }},
		{name: "no features", mutate: func(a *Artifact) { a.FeatureNames = nil }},
		{name: "duplicate feature", mutate: func(a *Artifact) { a.FeatureNames = []string{"x", "x"} }},
		{name: "arity mismatch", mutate: func(a *Artifact) { a.FeatureNames = []string{"price_yesterday"} }},
		{name: "non-finite coefficient", mutate: func(a *Artifact) {
			a.Model = &LinearRegressor{Coefficients: []float64{math.NaN(), 1}}
		}},
	}

	if err := linearArtifact("Onion").Validate(); err != nil {
		t.Fatalf("valid artifact rejected: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := linearArtifact("Onion")
			tt.mutate(a)
			if err := a.Validate(); !errors.Is(err, ErrInvalidArtifact) {
				t.Errorf("Validate() = %v, want ErrInvalidArtifact", err)
			}
		})
	}
}

func TestArtifact_PredictOrdersByName(t *testing.T) {
	a := linearArtifact("Onion")

	// Map iteration order is irrelevant; extra keys are ignored.
	got, err := a.PredictPerKg(map[string]float64{
		"market_lat":      20,
		"month":           3,
		"price_yesterday": 25,
	})
	if err != nil {
		t.Fatalf("PredictPerKg() error = %v", err)
	}
	// (100*25 + 10*20) / 100
	if got != 27 {
		t.Errorf("PredictPerKg() = %v, want 27", got)
	}
}

func TestArtifact_FeatureMismatch(t *testing.T) {
	a := linearArtifact("Onion")
	_, err := a.Predict(map[string]float64{"price_yesterday": 25})

	if !errors.Is(err, ErrFeatureMismatch) {
		t.Fatalf("Predict() = %v, want ErrFeatureMismatch", err)
	}
	var fm *FeatureMismatchError
	if !errors.As(err, &fm) {
		t.Fatalf("error is not *FeatureMismatchError: %T", err)
	}
	if len(fm.Missing) != 1 || fm.Missing[0] != "market_lat" {
		t.Errorf("Missing = %v, want [market_lat]", fm.Missing)
	}
}

func TestNotFound(t *testing.T) {
	err := NotFound("Garlic")
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("NotFound() does not wrap ErrModelNotFound")
	}
	if !strings.Contains(err.Error(), "Garlic") {
		t.Errorf("NotFound() = %q, want commodity in message", err.Error())
	}
}

func TestJSON_RoundTripLinear(t *testing.T) {
	a := linearArtifact("Onion")
	a.TrainedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	if err := EncodeJSON(&buf, a); err != nil {
		t.Fatalf("EncodeJSON() error = %v", err)
	}
	got, err := DecodeJSON(&buf)
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	if got.Commodity != "Onion" || got.Version != 1 || !got.TrainedAt.Equal(a.TrainedAt) {
		t.Errorf("decoded metadata = %+v", got)
	}

	features := map[string]float64{"price_yesterday": 30, "market_lat": 18.5}
	want, _ := a.Predict(features)
	have, err := got.Predict(features)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if have != want {
		t.Errorf("decoded prediction = %v, want %v", have, want)
	}
}

func TestDecodeJSON_TreeEnsemble(t *testing.T) {
	doc := `{
		"commodity": "Tomato",
		"feature_names": ["price_yesterday"],
		"model": {
			"kind": "tree_ensemble",
			"features": 1,
			"trees": [
				{"nodes": [
					{"feature": 0, "threshold": 5, "left": 1, "right": 2},
					{"feature": -1, "value": 1000},
					{"feature": -1, "value": 3000}
				]}
			]
		}
	}`

	a, err := DecodeJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	got, err := a.Predict(map[string]float64{"price_yesterday": 7})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if got != 3000 {
		t.Errorf("Predict() = %v, want 3000", got)
	}
}

func TestDecodeJSON_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "malformed", doc: `{"commodity":`},
		{name: "unknown kind", doc: `{"commodity":"Onion","feature_names":["a"],"model":{"kind":"svm"}}`},
		{name: "unknown field", doc: `{"commodity":"Onion","feature_names":["a"],"extra":1,"model":{"kind":"linear","coefficients":[1]}}`},
		{name: "arity", doc: `{"commodity":"Onion","feature_names":["a","b"],"model":{"kind":"linear","coefficients":[1]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeJSON(strings.NewReader(tt.doc)); !errors.Is(err, ErrInvalidArtifact) {
				t.Errorf("DecodeJSON() = %v, want ErrInvalidArtifact", err)
			}
		})
	}
}
