// Package snapshot serializes state values deterministically.
//
// Marshal renders any JSON-encodable value as RFC 8785 style canonical JSON
// (sorted keys, NFC strings, integers only). StateHash and EntryID derive
// domain-separated SHA-256 identities from that form; the journal and the
// scenario harness use them to compare states across runs without storing
// or diffing whole values.
//
// Clone and Patch support test tooling: Clone gives an expected-state copy
// that shares nothing with the store, and Patch applies a JSON merge patch
// to describe an expected change.
package snapshot
