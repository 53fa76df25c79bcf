// Package bbh holds the data model shared by every stage of the explorer.
//
// A run starts from an immutable [Binary] description, queries a surrogate
// model once for raw [Dynamics], resamples everything onto the animation grid
// as a [Series] plus a [Modes] set, and evaluates a single [Remnant] summary
// for the post-merger part of the movie.
//
// Times are in units of the total mass M, with t=0 at the waveform peak.
package bbh
