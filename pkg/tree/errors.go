package tree

import "errors"

// ErrInvalidStructure is returned when an edit or a height change would leave
// the tree violating its structural invariants.
var ErrInvalidStructure = errors.New("invalid tree structure")

// ErrEditInProgress is returned by BeginEdit when another edit is still open.
var ErrEditInProgress = errors.New("tree edit already in progress")

// ErrNotEditing is returned when an edit is used after it was committed or aborted.
var ErrNotEditing = errors.New("tree is not in an edit transaction")

// ErrDuplicateTaxon is returned when two tips carry the same name.
var ErrDuplicateTaxon = errors.New("duplicate taxon")

// ErrNewick is returned when a Newick string cannot be parsed.
var ErrNewick = errors.New("malformed newick")
