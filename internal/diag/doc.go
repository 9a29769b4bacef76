// Package diag defines the diagnostic model shared by the merge engine,
// the attribution core and the renderers.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Stage – which step of the merge produced it (syntax, schema, operation).
//   - Message – the engine's text, kept byte-exact; attribution matches on it.
//   - Positioned – set only for syntax diagnostics that carry a location in
//     their own fragment. Such diagnostics are localizable without exclusion.
//   - Location – optional display location (fragment id, line, column).
//
// # Scope
//
// Package diag does not perform any formatting, IO or CLI integration.
// Rendering lives in internal/diagfmt, attribution in internal/attrib.
//
// Keep the data model deterministic and serialisable: engine outcomes are
// cached on disk with msgpack.
package diag
