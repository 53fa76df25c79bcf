// Package geom reconstructs the 3D picture of a binary from resampled
// surrogate data: component trajectories, Kerr-Schild horizon ellipsoids,
// angular momentum, and the gravitational-wave strain projected onto
// reference planes or seen from a viewing direction.
package geom
