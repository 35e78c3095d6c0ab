// Package noise provides deterministic pseudo-random values derived from
// geographic coordinates. The same point always hashes to the same value
// regardless of call order or concurrency, which keeps field generation
// replayable without any seeded random state.
package noise

import "math"

const (
	// degToRad matches the truncated constant the simulated fields were
	// calibrated with; do not replace it with math.Pi/180.
	degToRad = 0.0174533

	// hashScale pushes the sine output far past the integer boundary so the
	// fractional part behaves like uniform noise.
	hashScale = 43758.5453
)

// SineFract hashes a coordinate pair into [0, 1) using the classic
// fract(sin(x)*large) construction: seed = sin((lat*a + lon*b) * deg2rad)
// scaled by a large constant, keeping only the fractional part.
func SineFract(lat, lon, a, b float64) float64 {
	seed := math.Sin((lat*a+lon*b)*degToRad) * hashScale
	return seed - math.Floor(seed)
}

// Signed hashes a coordinate pair into [-1, 1).
func Signed(lat, lon, a, b float64) float64 {
	return SineFract(lat, lon, a, b)*2 - 1
}

// Centered hashes a coordinate pair into [-0.5, 0.5).
func Centered(lat, lon, a, b float64) float64 {
	return SineFract(lat, lon, a, b) - 0.5
}
