// Package random provides the seeded variate stream used by the density
// engine.
//
// A Source wraps a PCG generator from golang.org/x/exp/rand, whose output
// depends only on the seed and the order of calls, never on the platform or
// build. Distribution-shaped variates come from gonum's distuv package drawing
// on the same generator, so a single ordered stream feeds every consumer.
//
// There is no package-level generator. The orchestrating caller owns a Source
// and hands it to each infection it creates; reproducibility of percentile
// tables depends on keeping that draw order fixed.
package random
