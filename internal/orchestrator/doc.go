// Package orchestrator drives generation of a deck section: the metadata stage,
// then the image stage for every item, with pacing, retry and per-item failure
// isolation, reporting progress through events and a progress.Registry.
//
// Key components:
//
// 1. Executor:
//   - Issues exactly one call to the generation service per invocation
//   - Attaches the optional style reference to image calls
//   - Never sleeps and never retries; callers pace and retry around it
//
// 2. Controller.GenerateSection:
//   - Stage 1 splits the section's canonical names into sub-requests, runs them
//     under the retry policy, and publishes the items as soon as metadata arrives
//   - Stage 2 walks the items one pacing interval apart, strictly sequentially
//   - A stage 1 failure aborts the run; a stage 2 failure only marks its item
//
// 3. Controller.RegenerateImage:
//   - Re-runs the image stage for one item, with a uniqueness token appended to
//     the instruction so the service does not reproduce the previous output
//
// The Controller is not reentrant for a section: callers must not start a second
// run for a section while one is active.
package orchestrator
