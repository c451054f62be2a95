package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownResourceType = errors.New("unknown resource type")
	ErrMissingDependency   = errors.New("missing dependency mapping")
	ErrSnapshotLocked      = errors.New("snapshot directory is locked by another export")
)

// DependencyKind names the reference array a symbolic dependency came from.
type DependencyKind string

const (
	DependencyLexicon      DependencyKind = "lexicon"
	DependencyAttachedFlow DependencyKind = "attached flow"
)

// MissingDependencyError reports a symbolic dependency name that has no entry in
// the dependency map. It is never recoverable within a run: the CLI exits on it.
type MissingDependencyError struct {
	Kind       DependencyKind
	Name       string
	ResourceID string
}

func (e *MissingDependencyError) Error() string {
	if e.ResourceID == "" {
		return fmt.Sprintf("%s %q is not in the dependency map", e.Kind, e.Name)
	}
	return fmt.Sprintf("%s %q referenced by %s is not in the dependency map", e.Kind, e.Name, e.ResourceID)
}

// Is lets errors.Is(err, ErrMissingDependency) match any MissingDependencyError.
func (e *MissingDependencyError) Is(target error) bool {
	return target == ErrMissingDependency
}
