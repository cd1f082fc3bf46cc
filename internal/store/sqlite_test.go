package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisleworks/vendor-research/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLite_UpsertVendor_InsertThenUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &model.VendorRecord{
		SourceURL:  "https://x.com/a",
		Name:       "Spin Master",
		VendorType: "DJ",
		About:      "open-format DJ",
		ScrapedAt:  time.Now().UTC(),
	}
	created, err := s.UpsertVendorBySourceURL(ctx, first)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	// Re-scrape of the same URL replaces fields, keeps identity, and never
	// produces a second record.
	second := &model.VendorRecord{
		SourceURL:  "https://x.com/a",
		Name:       "Spin Master Events",
		VendorType: "DJ",
		About:      "weddings and corporate",
		ScrapedAt:  time.Now().UTC(),
	}
	updated, err := s.UpsertVendorBySourceURL(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Spin Master Events", updated.Name)

	all, err := s.ListVendors(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Spin Master Events", all[0].Name)
	assert.Equal(t, "https://x.com/a", all[0].SourceURL)
}

// A second writer that races in with its own freshly generated ID must
// end up on the existing record: the returned ID is the original one and
// the stored document's id matches the row key, never the loser's.
func TestSQLite_UpsertVendor_ConflictKeepsCanonicalID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	winner, err := s.UpsertVendorBySourceURL(ctx, &model.VendorRecord{
		SourceURL:  "https://x.com/a",
		Name:       "Spin Master",
		VendorType: "DJ",
		ScrapedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	loser, err := s.UpsertVendorBySourceURL(ctx, &model.VendorRecord{
		ID:         "loser-id",
		SourceURL:  "https://x.com/a",
		Name:       "Spin Master Events",
		VendorType: "DJ",
		ScrapedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, winner.ID, loser.ID)

	// The document keeps the canonical id, so lookups by the returned ID
	// always resolve.
	got, err := s.GetVendorByID(ctx, winner.ID)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, got.ID)
	assert.Equal(t, "Spin Master Events", got.Name)

	_, err = s.GetVendorByID(ctx, "loser-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_VendorLookups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v, err := s.UpsertVendorBySourceURL(ctx, &model.VendorRecord{
		SourceURL:  "https://x.com/florist",
		Name:       "Bloom & Co",
		VendorType: "Florist",
		ScrapedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	byID, err := s.GetVendorByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bloom & Co", byID.Name)

	byURL, err := s.GetVendorBySourceURL(ctx, "https://x.com/florist")
	require.NoError(t, err)
	assert.Equal(t, v.ID, byURL.ID)

	_, err = s.GetVendorByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetVendorBySourceURL(ctx, "https://x.com/unknown")
	assert.ErrorIs(t, err, ErrNotFound)

	florists, err := s.ListVendorsByType(ctx, "Florist")
	require.NoError(t, err)
	assert.Len(t, florists, 1)

	djs, err := s.ListVendorsByType(ctx, "DJ")
	require.NoError(t, err)
	assert.Empty(t, djs)
}

func TestSQLite_VendorNormalizedOnRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v, err := s.UpsertVendorBySourceURL(ctx, &model.VendorRecord{
		SourceURL:  "https://x.com/bare",
		Name:       "Bare Minimum",
		VendorType: "DJ",
	})
	require.NoError(t, err)

	got, err := s.GetVendorByID(ctx, v.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.EventImages)
	assert.NotNil(t, got.FAQs)
	assert.NotNil(t, got.SocialMedia)
	assert.NotNil(t, got.Attributes)
}

func TestSQLite_AddUserVendors_SetUnion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveUser(ctx, &model.User{ID: "u1", Name: "Jamie"}))

	require.NoError(t, s.AddUserVendors(ctx, "u1", []string{"v1", "v2"}))
	require.NoError(t, s.AddUserVendors(ctx, "u1", []string{"v2", "v3"}))
	require.NoError(t, s.AddUserVendors(ctx, "u1", nil))

	u, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2", "v3"}, u.VendorIDs)

	assert.ErrorIs(t, s.AddUserVendors(ctx, "ghost", []string{"v1"}), ErrNotFound)
}

func TestSQLite_SetBookedVendors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveUser(ctx, &model.User{ID: "u1"}))

	booked := []model.BookedVendor{{VendorID: "v1", VendorType: "DJ"}}
	require.NoError(t, s.SetBookedVendors(ctx, "u1", booked))

	u, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, booked, u.BookedVendors)

	require.NoError(t, s.SetBookedVendors(ctx, "u1", nil))
	u, err = s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, u.BookedVendors)
}

func TestSQLite_ToDoListRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetToDoList(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	list := &model.ToDoList{
		UserID: "u1",
		Sections: []model.ToDoSection{
			{Name: "12 months out", Items: []model.ToDoItem{
				{Task: "Find a DJ for the reception"},
				{Task: "Book the venue", AISent: true},
			}},
		},
	}
	require.NoError(t, s.SaveToDoList(ctx, list))

	got, err := s.GetToDoList(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got.Sections, 1)
	assert.Equal(t, "Find a DJ for the reception", got.Sections[0].Items[0].Task)
	assert.True(t, got.Sections[0].Items[1].AISent)

	// Saving again replaces the document.
	list.Sections[0].Items[0].AISent = true
	require.NoError(t, s.SaveToDoList(ctx, list))
	got, err = s.GetToDoList(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got.Sections[0].Items[0].AISent)
}
