// Package generation defines the boundary to the external generative content
// service. The Generator interface covers the two operations the orchestrator
// consumes (metadata synthesis and image synthesis), errors.go holds the failure
// taxonomy, and the classifier maps a raw provider failure onto RateLimited or
// Fatal so retry policy stays independent of any one provider's error shapes.
//
// Provider adapters (Gemini, OpenAI) live under internal/platform.
package generation
