// Package notifications delivers sync agent events via ntfy.
//
// The default implementation publishes to the topic configured in
// config.toml and degrades to a no-op when no topic is set. Individual
// event classes (drain results, session expiry, errors) can be toggled in
// configuration.
package notifications
