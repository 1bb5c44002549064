// Package gemini provides an implementation of the generation.Generator interface
// backed by Google's Gemini API.
//
// This package is an infrastructure adapter, connecting the orchestrator to the
// external Gemini service without exposing the details of that service to the
// rest of the application.
//
// Key components:
//
// 1. Generator:
//   - Implements the generation.Generator interface
//   - Requests card metadata as JSON constrained by a response schema
//   - Requests images with the TEXT and IMAGE response modalities, attaching
//     the optional style reference as inline data
//
// 2. Error translation:
//   - SDK API errors become *generation.ProviderError so the classifier can
//     recognise quota exhaustion by status code
//   - Safety blocks become generation.ErrContentBlocked
//   - Unparseable or empty responses become generation.ErrInvalidResponse
//
// The Generator performs exactly one API call per method invocation. Pacing and
// retry are the caller's concern.
package gemini
