// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package poller provides the OS readiness-notification capability behind
// api.Poller, with epoll (Linux) and kqueue (Darwin/BSD) backends. Backend
// selection is platform-driven at build time; unsupported platforms fail
// fast at initialization.
package poller
