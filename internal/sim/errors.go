package sim

import "errors"

// Setup errors. All of these are fatal before the first move attempt;
// nothing in this package errors mid-run.
var (
	// ErrMaxTrials indicates random placement could not find a
	// non-overlapping position (density too high).
	ErrMaxTrials = errors.New("sim: maximum number of trial insertions reached")

	// ErrUnknownModel indicates an unregistered potential name.
	ErrUnknownModel = errors.New("sim: unknown model")

	// ErrUnknownMover indicates an unregistered move engine name.
	ErrUnknownMover = errors.New("sim: unknown mover")

	// ErrDimension indicates a model/dimensionality mismatch.
	ErrDimension = errors.New("sim: model not available in this dimensionality")
)
