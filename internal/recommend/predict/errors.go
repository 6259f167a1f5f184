// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package predict

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrModelNotFound is returned when no artifact exists for a commodity.
	ErrModelNotFound = errors.New("model not found")

	// ErrFeatureMismatch is returned when an artifact expects features the
	// caller did not supply.
	ErrFeatureMismatch = errors.New("feature mismatch")

	// ErrInvalidArtifact is returned when a stored artifact is malformed.
	ErrInvalidArtifact = errors.New("invalid artifact")
)

// FeatureMismatchError names the features an artifact needed but did not get.
type FeatureMismatchError struct {
	Commodity string
	Missing   []string
}

// Error implements error.
func (e *FeatureMismatchError) Error() string {
	return fmt.Sprintf("feature mismatch for %s: missing %s", e.Commodity, strings.Join(e.Missing, ", "))
}

// Unwrap allows errors.Is(err, ErrFeatureMismatch).
func (e *FeatureMismatchError) Unwrap() error {
	return ErrFeatureMismatch
}

// NotFound wraps ErrModelNotFound with the commodity name.
func NotFound(commodity string) error {
	return fmt.Errorf("%w: %s", ErrModelNotFound, commodity)
}
