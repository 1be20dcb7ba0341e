// Package queue provides the crawl frontier: an unbounded, blocking,
// multi-producer/multi-consumer FIFO queue.
//
// # Semantics
//
//   - Push never blocks and wakes at most one waiting consumer.
//   - Pop blocks while the queue is empty and returns items in global
//     push order (not per-producer order).
//   - IsEmpty and Len are snapshots and only valid as hints.
//
// # Shutdown
//
// The queue has no Close and no cancellation. Consumers are released with
// a poison value: the owner pushes one designated sentinel per consumer
// and each consumer exits when it pops the sentinel. Calling Pop with no
// remaining producers and no sentinel blocks forever; avoiding that is the
// caller's shutdown protocol, not the queue's.
package queue
