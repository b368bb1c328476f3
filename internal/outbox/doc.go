// Package outbox persists work the client could not deliver while offline.
//
// Three bounded sub-queues share one SQLite database: chat messages, meeting
// audio uploads, and deferred mutations (notes and calendar events). Each
// sub-queue holds at most the configured capacity; inserting into a full
// queue evicts the oldest entries in the same transaction. Uploads carry a
// status lifecycle with a bounded retry count, messages and actions are
// removed only after successful replay.
package outbox
