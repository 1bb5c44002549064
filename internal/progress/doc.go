// Package progress holds the observable status of section generation runs.
//
// A Reporter is owned by one run and records its stage and completed/total
// counters; it never performs I/O. A Registry keeps the latest snapshot per
// section so the presentation layer can poll status without holding a reference
// to the run.
package progress
