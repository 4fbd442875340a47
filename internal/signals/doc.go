// Package signals cleans daily trading-signal sheets and summarises them.
//
// A load runs the stages in order:
//
//	grid → DataRows → NormalizeColumns → coerce → ResolveDate → sort → FilterPeriod → ComputeStatistics
//
// Column recognition is a rule table evaluated once per load and cached on the
// Schema. Dates are read by an ordered list of strategies; rows none of them
// can read get a positional fallback date and are marked DateSourceFallback so
// callers can tell fabricated dates from real ones.
//
// Every function that depends on the current day takes it as an argument, so
// the package is deterministic under test.
package signals
