// Package reminder holds the reminder core: the durable store, snapshot
// persistence backends, id allocation, and the background delivery
// scheduler.
//
// The store is the single piece of shared mutable state between the request
// path (dialogue completion, manual deletion) and the delivery loop; all of
// its mutations are serialized and snapshot-persisted atomically.
package reminder
