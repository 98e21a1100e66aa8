// Package protocol owns the worker wire contract and the values decoded from it.
//
// Ownership boundary:
// - command literals and reply record tags
// - error taxonomy shared by the channel, decoder and command engine
// - result model (platform report, snips, configurations, errors)
// - platform / stage / error-level enumerations
//
// Sub-packages:
// - line: newline framing over a byte stream
// - escape: multi-line payload codec
// - binding: compile-reply record registry and decoders
// - session: the command state machines
package protocol
