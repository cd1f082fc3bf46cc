// Package store persists vendor records, user vendor associations, and
// to-do lists behind a single interface with SQLite and Postgres backends.
package store

import (
	"context"
	"errors"

	"github.com/aisleworks/vendor-research/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// Store defines the persistence contract for the research pipeline.
type Store interface {
	// Vendors. UpsertVendorBySourceURL enforces the at-most-one-record-per
	// source-URL invariant: it inserts on first sight and replaces fields
	// wholesale on re-scrape, atomically with respect to concurrent writers
	// of the same URL. The returned record carries the canonical ID (the
	// original one when updating).
	GetVendorByID(ctx context.Context, id string) (*model.VendorRecord, error)
	GetVendorBySourceURL(ctx context.Context, sourceURL string) (*model.VendorRecord, error)
	UpsertVendorBySourceURL(ctx context.Context, v *model.VendorRecord) (*model.VendorRecord, error)
	ListVendorsByType(ctx context.Context, vendorType string) ([]model.VendorRecord, error)
	ListVendors(ctx context.Context) ([]model.VendorRecord, error)

	// Users. AddUserVendors is a set union: already-present IDs are no-ops.
	GetUser(ctx context.Context, id string) (*model.User, error)
	SaveUser(ctx context.Context, u *model.User) error
	AddUserVendors(ctx context.Context, userID string, vendorIDs []string) error
	SetBookedVendors(ctx context.Context, userID string, booked []model.BookedVendor) error

	// To-do lists, keyed by user.
	GetToDoList(ctx context.Context, userID string) (*model.ToDoList, error)
	SaveToDoList(ctx context.Context, list *model.ToDoList) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// unionIDs merges add into ids preserving order, skipping duplicates.
// Returns the merged slice and whether anything was added.
func unionIDs(ids, add []string) ([]string, bool) {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	changed := false
	for _, id := range add {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		changed = true
	}
	return ids, changed
}
