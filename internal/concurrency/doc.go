// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Lock-free concurrency primitives shared by the scheduler kernel and the
// worker pool: a bounded multi-producer/multi-consumer ring used for the
// process signal buffer and for per-worker task queues.
package concurrency
