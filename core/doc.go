// Package core provides the foundational domain types and interfaces used by
// agentgate. It defines the core abstractions for:
//
//   - Agents (per-request units of work turning a user message into a reply)
//   - Stream events (the closed set of incremental outputs an agent produces)
//   - Conversation context (ordered, role-tagged prior-turn history)
//   - Token usage accounting
//
// The package intentionally keeps implementation concerns (model clients,
// HTTP serving, concrete agents) out of scope, exposing small interfaces to
// enable custom backends and extensions.
package core
