// Package pool
// Author: momentics <momentics@gmail.com>
//
// Bounded worker pool for offloaded blocking calls. The pool is sized once
// at construction and never resized; each submission yields a Future that
// settles with the call's result, error, or recovered panic value, so no
// failure inside a worker is ever silently lost.
package pool
