package engine

import "errors"

var (
	// ErrUnknownState means a job reached a state its kind never enters.
	ErrUnknownState = errors.New("job fell into an unknown state")
	// ErrUnknownJob means a job id is not in the registry.
	ErrUnknownJob = errors.New("unknown job")

	ErrUnknownStation = errors.New("unknown station")
	ErrUnknownOffer   = errors.New("unknown offer")
)

// errNoCapacity makes the dispatcher put a worker and job back in line.
var errNoCapacity = errors.New("no capacity")
