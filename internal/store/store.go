// Package store persists the merged record set.
//
// A Store replaces the whole set on every Save. Readers never observe a partially
// written set: each backend swaps the old set for the new one in a single step.
package store

import (
	"context"
	"errors"

	"github.com/JonMunkholm/sheetmerge/internal/record"
)

var (
	// ErrRead wraps failures loading the persisted set.
	ErrRead = errors.New("storage read failure")

	// ErrWrite wraps failures saving the merged set.
	ErrWrite = errors.New("storage write failure")
)

// Store loads and replaces the persisted record set.
type Store interface {
	// Load returns the persisted set. Nothing persisted yet is an empty set, not an error.
	Load(ctx context.Context) (record.Set, error)

	// Save replaces the persisted set with set. It either fully succeeds or leaves
	// the previous set in place.
	Save(ctx context.Context, set record.Set) error

	// Name identifies the backend in logs.
	Name() string
}
