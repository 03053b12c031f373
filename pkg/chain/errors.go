package chain

import "errors"

var (
	// ErrEmptySchedule is returned by Step when the schedule has no operators.
	ErrEmptySchedule = errors.New("operator schedule is empty")
	// ErrCheckpointMismatch is returned when a checkpoint does not describe
	// the model and operators of the chain it is restored into.
	ErrCheckpointMismatch = errors.New("checkpoint does not match chain")
)
