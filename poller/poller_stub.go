//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

// File: poller/poller_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub for platforms without a supported readiness primitive.

package poller

import (
	"errors"

	"github.com/momentics/hioload-sched/api"
)

// New fails fast: no readiness primitive is available on this platform.
func New() (api.Poller, error) {
	return nil, errors.New("poller: this platform is not supported")
}

// NewSize fails fast on unsupported platforms.
func NewSize(batch int) (api.Poller, error) {
	return New()
}
