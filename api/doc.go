// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package api defines the public contracts of hioload-sched: the task and
// future abstractions, the bounded executor used for syscall offloading, the
// cross-platform readiness poller, and the common error taxonomy shared by
// all implementation packages.
package api
