// Package retry implements the backoff retry policy wrapped around every call to
// the generation service.
//
// A failure is classified before anything else happens. Fatal failures return
// immediately and unchanged. RateLimited failures are retried after a delay that
// starts at Policy.InitialDelay and grows by Policy.GrowthFactor per round, until
// Policy.MaxRetries retries are spent. With the default policy (3 retries, 10s,
// 1.5x) the waits are 10s, 15s and 22.5s and the operation runs at most 4 times.
//
// Each retry emits a warning Event carrying the remaining retries and the next
// delay; exhaustion emits an error Event. ExecuteOrFallback turns exhaustion into
// a degraded result instead of a failure.
package retry
