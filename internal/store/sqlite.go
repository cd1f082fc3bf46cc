package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/aisleworks/vendor-research/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Documents are
// stored as JSON text; the vendor table carries source_url and
// vendor_type columns for keyed lookups.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS vendors (
	id          TEXT PRIMARY KEY,
	source_url  TEXT NOT NULL UNIQUE,
	vendor_type TEXT NOT NULL,
	doc         TEXT NOT NULL,
	scraped_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id  TEXT PRIMARY KEY,
	doc TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS todo_lists (
	user_id TEXT PRIMARY KEY,
	doc     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_vendors_vendor_type ON vendors(vendor_type);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetVendorByID(ctx context.Context, id string) (*model.VendorRecord, error) {
	return s.scanVendorRow(s.db.QueryRowContext(ctx,
		`SELECT doc FROM vendors WHERE id = ?`, id))
}

func (s *SQLiteStore) GetVendorBySourceURL(ctx context.Context, sourceURL string) (*model.VendorRecord, error) {
	return s.scanVendorRow(s.db.QueryRowContext(ctx,
		`SELECT doc FROM vendors WHERE source_url = ?`, sourceURL))
}

func (s *SQLiteStore) scanVendorRow(row *sql.Row) (*model.VendorRecord, error) {
	var doc string
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "sqlite: scan vendor")
	}
	return unmarshalVendor(doc)
}

func (s *SQLiteStore) UpsertVendorBySourceURL(ctx context.Context, v *model.VendorRecord) (*model.VendorRecord, error) {
	rec := *v
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.Normalize()
	doc, err := json.Marshal(&rec)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal vendor")
	}

	// A single statement resolves the canonical ID: on conflict the row
	// keeps its original id and the incoming doc's id is patched to match,
	// so concurrent first scrapes of the same URL cannot tear identity.
	var canonicalID string
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO vendors (id, source_url, vendor_type, doc, scraped_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source_url) DO UPDATE SET
		   vendor_type = excluded.vendor_type,
		   doc         = json_set(excluded.doc, '$.id', vendors.id),
		   scraped_at  = excluded.scraped_at
		 RETURNING id`,
		rec.ID, rec.SourceURL, rec.VendorType, string(doc), rec.ScrapedAt.UTC(),
	).Scan(&canonicalID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: upsert vendor")
	}

	rec.ID = canonicalID
	return &rec, nil
}

func (s *SQLiteStore) ListVendorsByType(ctx context.Context, vendorType string) ([]model.VendorRecord, error) {
	return s.listVendors(ctx,
		`SELECT doc FROM vendors WHERE vendor_type = ? ORDER BY scraped_at`, vendorType)
}

func (s *SQLiteStore) ListVendors(ctx context.Context) ([]model.VendorRecord, error) {
	return s.listVendors(ctx, `SELECT doc FROM vendors ORDER BY scraped_at`)
}

func (s *SQLiteStore) listVendors(ctx context.Context, query string, args ...any) ([]model.VendorRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list vendors")
	}
	defer rows.Close()

	var out []model.VendorRecord
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan vendor row")
		}
		v, err := unmarshalVendor(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate vendors")
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM users WHERE id = ?`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "sqlite: get user")
	}
	var u model.User
	if err := json.Unmarshal([]byte(doc), &u); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal user")
	}
	return &u, nil
}

func (s *SQLiteStore) SaveUser(ctx context.Context, u *model.User) error {
	doc, err := json.Marshal(u)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal user")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, doc) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET doc = excluded.doc`,
		u.ID, string(doc),
	)
	return eris.Wrap(err, "sqlite: save user")
}

func (s *SQLiteStore) AddUserVendors(ctx context.Context, userID string, vendorIDs []string) error {
	if len(vendorIDs) == 0 {
		return nil
	}
	return s.mutateUser(ctx, userID, func(u *model.User) bool {
		merged, changed := unionIDs(u.VendorIDs, vendorIDs)
		u.VendorIDs = merged
		return changed
	})
}

func (s *SQLiteStore) SetBookedVendors(ctx context.Context, userID string, booked []model.BookedVendor) error {
	return s.mutateUser(ctx, userID, func(u *model.User) bool {
		u.BookedVendors = booked
		return true
	})
}

// mutateUser applies fn to the user's document inside a transaction. fn
// returns false to skip the write.
func (s *SQLiteStore) mutateUser(ctx context.Context, userID string, fn func(*model.User) bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin user update")
	}
	defer tx.Rollback()

	var doc string
	err = tx.QueryRowContext(ctx, `SELECT doc FROM users WHERE id = ?`, userID).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return eris.Wrap(err, "sqlite: get user for update")
	}

	var u model.User
	if err := json.Unmarshal([]byte(doc), &u); err != nil {
		return eris.Wrap(err, "sqlite: unmarshal user")
	}

	if !fn(&u) {
		return tx.Commit()
	}

	updated, err := json.Marshal(&u)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal user")
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET doc = ? WHERE id = ?`, string(updated), userID,
	); err != nil {
		return eris.Wrap(err, "sqlite: update user")
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit user update")
}

func (s *SQLiteStore) GetToDoList(ctx context.Context, userID string) (*model.ToDoList, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM todo_lists WHERE user_id = ?`, userID).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "sqlite: get todo list")
	}
	var list model.ToDoList
	if err := json.Unmarshal([]byte(doc), &list); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal todo list")
	}
	return &list, nil
}

func (s *SQLiteStore) SaveToDoList(ctx context.Context, list *model.ToDoList) error {
	doc, err := json.Marshal(list)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal todo list")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO todo_lists (user_id, doc) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET doc = excluded.doc`,
		list.UserID, string(doc),
	)
	return eris.Wrap(err, "sqlite: save todo list")
}

func unmarshalVendor(doc string) (*model.VendorRecord, error) {
	var v model.VendorRecord
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal vendor")
	}
	v.Normalize()
	return &v, nil
}
