// Package binding decodes the per-symbol metadata records of a compile-snippet reply.
//
// Ownership boundary:
// - the closed set of Binding variants
// - tag -> decoder registry and dispatch
// - ShaderLab text rendering of decoded bindings
//
// Decoders fail the command on short records and non-numeric tokens. Records
// whose enumerants fall outside the known tables are dropped, not failed.
package binding
