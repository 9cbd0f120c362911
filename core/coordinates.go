package core

import (
	"math"
)

// Geographic is a direction plus distance around an origin.
type Geographic struct {
	Lat float64 // Latitude in radians [-π/2, π/2], positive towards +Y
	Lon float64 // Longitude in radians [-π, π], positive from +X towards +Z
	R   float64 // Distance from the origin
}

// DegreesToRadians converts degrees to radians
func DegreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

// GeographicToCartesian converts to a Y-up offset from the origin. Longitude
// 0 lies on +X and longitude 90° on +Z.
func GeographicToCartesian(g Geographic) Vector3 {
	cosLat := math.Cos(g.Lat)
	return Vector3{
		X: g.R * cosLat * math.Cos(g.Lon),
		Y: g.R * math.Sin(g.Lat),
		Z: g.R * cosLat * math.Sin(g.Lon),
	}
}

// CartesianToGeographic is the inverse of GeographicToCartesian. The origin
// maps to the zero value.
func CartesianToGeographic(v Vector3) Geographic {
	r := v.Length()
	if r < 1e-10 {
		return Geographic{}
	}
	return Geographic{
		Lat: math.Asin(math.Max(-1, math.Min(1, v.Y/r))),
		Lon: math.Atan2(v.Z, v.X),
		R:   r,
	}
}

// ValidateCoordinates checks if coordinates are within valid ranges
func ValidateCoordinates(g Geographic) bool {
	return g.Lat >= -math.Pi/2 && g.Lat <= math.Pi/2 &&
		g.Lon >= -math.Pi && g.Lon <= math.Pi
}

// NormalizeCoordinates clamps latitude to ±maxLat and wraps longitude into
// [-π, π].
func NormalizeCoordinates(g Geographic, maxLat float64) Geographic {
	if g.Lat > maxLat {
		g.Lat = maxLat
	} else if g.Lat < -maxLat {
		g.Lat = -maxLat
	}

	for g.Lon > math.Pi {
		g.Lon -= 2 * math.Pi
	}
	for g.Lon < -math.Pi {
		g.Lon += 2 * math.Pi
	}

	return g
}
