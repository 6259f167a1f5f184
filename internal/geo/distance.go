// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

// Package geo provides great-circle distance calculations.
package geo

import "math"

// EarthRadiusKM is the IUGG mean Earth radius in kilometres.
const EarthRadiusKM = 6371.0088

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Distance returns the haversine distance in kilometres between two points
// given as decimal-degree latitude/longitude pairs.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)

	// Clamp rounding noise so antipodal points do not produce NaN.
	a = math.Min(1, math.Max(0, a))

	return 2 * EarthRadiusKM * math.Asin(math.Sqrt(a))
}

// DistanceTo returns the distance in kilometres from p to q.
func (p Point) DistanceTo(q Point) float64 {
	return Distance(p.Lat, p.Lon, q.Lat, q.Lon)
}

// Valid reports whether the point lies within the coordinate ranges.
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lon) &&
		p.Lat >= -90 && p.Lat <= 90 &&
		p.Lon >= -180 && p.Lon <= 180
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
