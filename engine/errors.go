package engine

import (
	"errors"

	"github.com/pthm-cable/flux/particles"
)

// Error taxonomy. UnsupportedDevice and InitializationFailed are fatal to
// Init; AllocationFailed is recoverable (the engine stays at its last good
// particle count).
var (
	// ErrUnsupportedDevice reports that the required GPU device is
	// unavailable. Callers are expected to have checked support already;
	// this is a defensive re-check at init.
	ErrUnsupportedDevice = errors.New("required GPU device unavailable")

	// ErrInitializationFailed reports that pipeline or buffer setup failed
	// at init. The engine never enters its running state.
	ErrInitializationFailed = errors.New("engine initialization failed")

	// ErrAllocationFailed reports a rejected particle buffer allocation.
	ErrAllocationFailed = particles.ErrAllocationFailed
)
