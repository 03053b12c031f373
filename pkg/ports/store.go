package ports

import (
	"context"
	"errors"

	"github.com/aretw0/sprig/pkg/checkpoint"
)

// ErrCheckpointNotFound is returned when no checkpoint exists for an ID.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// CheckpointStore persists chain checkpoints so that runs can be resumed.
type CheckpointStore interface {
	// Save persists the checkpoint under the given ID, replacing any previous one.
	Save(ctx context.Context, id string, cp *checkpoint.Checkpoint) error

	// Load retrieves a checkpoint.
	// Returns ErrCheckpointNotFound if it does not exist.
	Load(ctx context.Context, id string) (*checkpoint.Checkpoint, error)

	// Delete removes a checkpoint.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored checkpoints.
	List(ctx context.Context) ([]string, error)
}
