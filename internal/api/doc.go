// Package api defines the wire types exchanged with the Kai backend.
//
// Every request and response body uses snake_case field names on the wire;
// the structs here carry the canonical Go names and json tags so callers
// never touch raw JSON. Timestamps are ISO-8601 (RFC 3339) strings encoded
// through time.Time. The Value type models free-form JSON payloads (routing
// rules, preference values, chat metadata) as an explicit sum type instead
// of untyped maps.
package api
