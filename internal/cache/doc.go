// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

// Package cache provides a generic in-memory LRU cache with TTL expiry.
//
// The recommendation engine uses it to hold finished responses keyed by the
// normalized request, so repeated queries skip prediction entirely:
//
//	c := cache.NewLRU[string, Response](1024, 5*time.Minute)
//	c.Add(key, resp)
//	if resp, ok := c.Get(key); ok {
//	    // serve cached response
//	}
//
// Cached values are returned as stored. Callers that hand out mutable
// values (slices, maps) should copy on the way in or out.
package cache
