// Package session drives one worker through the line protocol.
//
// Ownership boundary:
// - the c:getPlatforms, c:preprocess and c:compileSnippet state machines
// - session disposal and the shutdown handshake
// - per-command hooks (metrics, tracing)
//
// A Session serves a single caller. Commands are half-duplex: one command's
// request/response cycle completes or fails before the next is written.
// There is no internal locking; callers sharing a Session must serialise.
package session
