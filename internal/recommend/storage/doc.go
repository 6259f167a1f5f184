// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

// Package storage persists predictor artifacts on local disk.
//
// Each artifact version is one file:
//
//	filename: {commodity}_v{version}.gob.gz   (commodity is path-escaped)
//
//	structure:
//	  - Metadata (ArtifactMetadata)
//	  - CompressedData (gzip of the gob-encoded feature names and regressor)
//
// The SHA-256 of the uncompressed payload is kept in the metadata and
// checked on every load; a mismatch is reported as predict.ErrInvalidArtifact.
// Writes go through a temp file and rename.
//
// Store implements predict.Source and serves the latest version of each
// commodity. Older versions stay on disk until Prune removes them.
package storage
