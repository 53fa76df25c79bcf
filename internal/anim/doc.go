// Package anim turns resampled binary data into animation frames.
//
// A Timeline fixes the playback times. A Renderer maps a frame number and a
// camera view to a scene.Frame and keeps no per-call state: the binary
// phase shows both horizons, their recent trajectories and spin arrows; the
// remnant phase shows the final hole drifting with its kick. The strain is
// projected onto the back planes until it has left the box. A Player holds the
// playback position and the pause state.
package anim
