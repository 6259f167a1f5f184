// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

/*
Package predict holds per-commodity price predictors.

An Artifact pairs a Regressor with the ordered feature names it was trained
on. Callers pass features by name and the artifact orders them, so a model
trained on a different column order still receives the right inputs. A
missing name is reported as a *FeatureMismatchError; extra names are ignored.
Predictions are modal prices per quintal; PredictPerKg divides by 100.

The Registry loads artifacts lazily from a Source, behind a circuit breaker,
and keeps them for the life of the process:

	reg := predict.NewRegistry(store, predict.DefaultRegistryConfig())
	art, err := reg.Load(ctx, "Onion")
	if errors.Is(err, predict.ErrModelNotFound) {
		// no model trained for this commodity
	}

Two model families are supported: ordinary least squares and averaged
regression trees. Both are evaluated in pure Go and are safe for concurrent
use once loaded.
*/
package predict
