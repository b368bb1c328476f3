// Package daemon hosts the kai sync agent.
//
// The agent owns the offline queue database (a file lock enforces a single
// instance), runs the periodic drain loop, watches the config file for
// reloadable settings, and serves a small JSON API on a loopback bind for
// the CLI and other local tooling.
package daemon
