// Package main hosts the Kai CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into backend
// API calls, offline queue maintenance, and configuration scaffolding. Shared
// dependencies (config, logger, API client, queue store, replay manager) are
// wired lazily through commandContext so cheap commands never open the queue
// database or touch the network.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
