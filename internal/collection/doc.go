// Package collection holds the in-memory entity collections behind the
// forum tool: posts, replies, threads, support requests and grading
// parameters. Each collection is a keyed cache over the persistent store,
// populated lazily on first use and refreshable on demand, and guards all
// access with its own mutex so callers may share one instance.
//
// Mutations are write-through: the in-memory change is applied first, the
// store write follows inside the same operation, and a failed write rolls
// the in-memory change back so memory and store never silently diverge.
package collection
