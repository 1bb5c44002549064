// Package openai implements generation.Generator on top of the official
// openai-go SDK: card metadata through chat completions in JSON mode, images
// through the image generation endpoint, or the image edit endpoint when a
// style reference is supplied.
//
// The SDK's own retries are disabled so the orchestrator's retry policy is the
// only one in effect.
package openai
