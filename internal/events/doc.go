// Package events carries generation progress from the orchestrator to its
// observers.
//
// The orchestrator emits an Event whenever a run changes stage, a section is
// published, an item changes status, progress advances, a retry is scheduled, or
// a run finishes. Observers implement Handler and are registered on an Emitter;
// ChannelHandler adapts the stream into a channel for consumers that prefer one.
//
// The primary components are:
// - Event: a single progress notification
// - Handler: interface for components that observe events
// - Emitter: interface for components that publish events
// - InMemoryEmitter: synchronous fan-out to registered handlers
package events
