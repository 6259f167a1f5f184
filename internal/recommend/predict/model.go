// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package predict

import (
	"encoding/gob"
	"fmt"
	"math"
)

// Model kinds.
const (
	KindLinear       = "linear"
	KindTreeEnsemble = "tree_ensemble"
)

// Regressor maps an ordered feature vector to a predicted price per quintal.
// Implementations are immutable once loaded and safe for concurrent use.
type Regressor interface {
	// Kind returns the model family name.
	Kind() string

	// NumFeatures returns the expected length of the input vector.
	NumFeatures() int

	// Predict evaluates the model. len(x) must equal NumFeatures.
	Predict(x []float64) (float64, error)

	// Validate checks the model's internal consistency.
	Validate() error
}

// LinearRegressor is an ordinary least squares model.
type LinearRegressor struct {
	Intercept    float64
	Coefficients []float64
}

// Kind implements Regressor.
func (m *LinearRegressor) Kind() string { return KindLinear }

// NumFeatures implements Regressor.
func (m *LinearRegressor) NumFeatures() int { return len(m.Coefficients) }

// Validate implements Regressor.
func (m *LinearRegressor) Validate() error {
	if len(m.Coefficients) == 0 {
		return fmt.Errorf("%w: linear model has no coefficients", ErrInvalidArtifact)
	}
	if !finite(m.Intercept) {
		return fmt.Errorf("%w: linear intercept is not finite", ErrInvalidArtifact)
	}
	for i, c := range m.Coefficients {
		if !finite(c) {
			return fmt.Errorf("%w: linear coefficient %d is not finite", ErrInvalidArtifact, i)
		}
	}
	return nil
}

// Predict implements Regressor.
func (m *LinearRegressor) Predict(x []float64) (float64, error) {
	if len(x) != len(m.Coefficients) {
		return 0, fmt.Errorf("linear model expects %d features, got %d", len(m.Coefficients), len(x))
	}
	y := m.Intercept
	for i, c := range m.Coefficients {
		y += c * x[i]
	}
	return y, nil
}

// TreeNode is one node of a regression tree. Leaves have Feature < 0.
// Internal nodes send x[Feature] <= Threshold to Left, otherwise Right.
type TreeNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
}

// RegressionTree is a flattened binary tree rooted at Nodes[0].
type RegressionTree struct {
	Nodes []TreeNode
}

// TreeEnsemble averages the outputs of its trees, as a random forest does.
type TreeEnsemble struct {
	Features int
	Trees    []RegressionTree
}

// Kind implements Regressor.
func (m *TreeEnsemble) Kind() string { return KindTreeEnsemble }

// NumFeatures implements Regressor.
func (m *TreeEnsemble) NumFeatures() int { return m.Features }

// Validate implements Regressor.
func (m *TreeEnsemble) Validate() error {
	if m.Features <= 0 {
		return fmt.Errorf("%w: tree ensemble has no features", ErrInvalidArtifact)
	}
	if len(m.Trees) == 0 {
		return fmt.Errorf("%w: tree ensemble has no trees", ErrInvalidArtifact)
	}
	for t, tree := range m.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("%w: tree %d is empty", ErrInvalidArtifact, t)
		}
		for n, node := range tree.Nodes {
			if node.Feature < 0 {
				if !finite(node.Value) {
					return fmt.Errorf("%w: tree %d leaf %d is not finite", ErrInvalidArtifact, t, n)
				}
				continue
			}
			if node.Feature >= m.Features {
				return fmt.Errorf("%w: tree %d node %d splits on feature %d", ErrInvalidArtifact, t, n, node.Feature)
			}
			// Children must come after their parent, which rules out cycles.
			if node.Left <= n || node.Left >= len(tree.Nodes) || node.Right <= n || node.Right >= len(tree.Nodes) {
				return fmt.Errorf("%w: tree %d node %d has invalid children", ErrInvalidArtifact, t, n)
			}
		}
	}
	return nil
}

// Predict implements Regressor.
func (m *TreeEnsemble) Predict(x []float64) (float64, error) {
	if len(x) != m.Features {
		return 0, fmt.Errorf("tree ensemble expects %d features, got %d", m.Features, len(x))
	}
	if len(m.Trees) == 0 {
		return 0, fmt.Errorf("tree ensemble has no trees")
	}

	var sum float64
	for t := range m.Trees {
		v, err := m.Trees[t].eval(x)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", t, err)
		}
		sum += v
	}
	return sum / float64(len(m.Trees)), nil
}

func (t *RegressionTree) eval(x []float64) (float64, error) {
	i := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		if i < 0 || i >= len(t.Nodes) {
			return 0, fmt.Errorf("node index %d out of range", i)
		}
		node := t.Nodes[i]
		if node.Feature < 0 {
			return node.Value, nil
		}
		if x[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
	return 0, fmt.Errorf("tree walk did not reach a leaf")
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Register gob types for artifact serialization.
//
//nolint:gochecknoinits // gob.Register must be called in init for type registration
func init() {
	gob.Register(&LinearRegressor{})
	gob.Register(&TreeEnsemble{})
}
