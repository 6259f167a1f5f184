// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package recommend

import "errors"

// ErrInvalidRequest is returned when a request fails validation. The
// wrapped *validation.RequestValidationError carries per-field detail.
var ErrInvalidRequest = errors.New("invalid recommendation request")
