// Package replay drains the offline queue through the request pipeline.
//
// The Manager is the seam between online and offline operation: sends that
// hit a connectivity failure are queued instead of failing, and Drain
// replays queued work in insertion order whenever the backend is reachable
// again. A background loop drains periodically, backing off with jitter
// while the backend stays unreachable.
package replay
