// Package clock abstracts time for the generation pipeline. Every pacing delay and
// retry backoff is a suspension point that goes through a Clock, so production code
// uses Real while tests inject Fake and observe the requested delays without waiting.
package clock
