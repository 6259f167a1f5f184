// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package predict

import (
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
)

// artifactJSON is the interchange form produced by training jobs.
type artifactJSON struct {
	Commodity    string     `json:"commodity"`
	FeatureNames []string   `json:"feature_names"`
	Version      int        `json:"version,omitempty"`
	TrainedAt    *time.Time `json:"trained_at,omitempty"`
	Model        modelJSON  `json:"model"`
}

type modelJSON struct {
	Kind string `json:"kind"`

	// linear
	Intercept    float64   `json:"intercept,omitempty"`
	Coefficients []float64 `json:"coefficients,omitempty"`

	// tree_ensemble
	Features int        `json:"features,omitempty"`
	Trees    []treeJSON `json:"trees,omitempty"`
}

type treeJSON struct {
	Nodes []nodeJSON `json:"nodes"`
}

type nodeJSON struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

// DecodeJSON reads and validates an artifact in interchange form.
func DecodeJSON(r io.Reader) (*Artifact, error) {
	var doc artifactJSON
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode json: %v", ErrInvalidArtifact, err)
	}

	a := &Artifact{
		Commodity:    doc.Commodity,
		FeatureNames: doc.FeatureNames,
		Version:      doc.Version,
	}
	if doc.TrainedAt != nil {
		a.TrainedAt = doc.TrainedAt.UTC()
	}

	switch doc.Model.Kind {
	case KindLinear:
		a.Model = &LinearRegressor{
			Intercept:    doc.Model.Intercept,
			Coefficients: doc.Model.Coefficients,
		}
	case KindTreeEnsemble:
		ens := &TreeEnsemble{Features: doc.Model.Features, Trees: make([]RegressionTree, len(doc.Model.Trees))}
		for i, t := range doc.Model.Trees {
			nodes := make([]TreeNode, len(t.Nodes))
			for j, n := range t.Nodes {
				nodes[j] = TreeNode(n)
			}
			ens.Trees[i] = RegressionTree{Nodes: nodes}
		}
		a.Model = ens
	default:
		return nil, fmt.Errorf("%w: unknown model kind %q", ErrInvalidArtifact, doc.Model.Kind)
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// EncodeJSON writes a in interchange form.
func EncodeJSON(w io.Writer, a *Artifact) error {
	if err := a.Validate(); err != nil {
		return err
	}

	doc := artifactJSON{
		Commodity:    a.Commodity,
		FeatureNames: a.FeatureNames,
		Version:      a.Version,
	}
	if !a.TrainedAt.IsZero() {
		t := a.TrainedAt
		doc.TrainedAt = &t
	}

	switch m := a.Model.(type) {
	case *LinearRegressor:
		doc.Model = modelJSON{Kind: KindLinear, Intercept: m.Intercept, Coefficients: m.Coefficients}
	case *TreeEnsemble:
		doc.Model = modelJSON{Kind: KindTreeEnsemble, Features: m.Features, Trees: make([]treeJSON, len(m.Trees))}
		for i, t := range m.Trees {
			nodes := make([]nodeJSON, len(t.Nodes))
			for j, n := range t.Nodes {
				nodes[j] = nodeJSON(n)
			}
			doc.Model.Trees[i] = treeJSON{Nodes: nodes}
		}
	default:
		return fmt.Errorf("%w: cannot encode model kind %q", ErrInvalidArtifact, a.Model.Kind())
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&doc)
}
