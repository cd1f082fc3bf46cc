package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/aisleworks/vendor-research/internal/db"
	"github.com/aisleworks/vendor-research/internal/model"
)

// PostgresStore implements Store using pgxpool with jsonb documents.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS vendors (
	id          TEXT PRIMARY KEY,
	source_url  TEXT NOT NULL UNIQUE,
	vendor_type TEXT NOT NULL,
	doc         JSONB NOT NULL,
	scraped_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id  TEXT PRIMARY KEY,
	doc JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS todo_lists (
	user_id TEXT PRIMARY KEY,
	doc     JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_vendors_vendor_type ON vendors(vendor_type);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetVendorByID(ctx context.Context, id string) (*model.VendorRecord, error) {
	return s.scanVendorRow(s.pool.QueryRow(ctx,
		`SELECT doc FROM vendors WHERE id = $1`, id))
}

func (s *PostgresStore) GetVendorBySourceURL(ctx context.Context, sourceURL string) (*model.VendorRecord, error) {
	return s.scanVendorRow(s.pool.QueryRow(ctx,
		`SELECT doc FROM vendors WHERE source_url = $1`, sourceURL))
}

func (s *PostgresStore) scanVendorRow(row pgx.Row) (*model.VendorRecord, error) {
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "postgres: scan vendor")
	}
	return unmarshalVendor(string(doc))
}

func (s *PostgresStore) UpsertVendorBySourceURL(ctx context.Context, v *model.VendorRecord) (*model.VendorRecord, error) {
	rec := *v
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.Normalize()
	doc, err := json.Marshal(&rec)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal vendor")
	}

	// A single statement resolves the canonical ID: on conflict the row
	// keeps its original id and the incoming doc's id is patched to match,
	// so concurrent first scrapes of the same URL cannot tear identity.
	var canonicalID string
	err = s.pool.QueryRow(ctx,
		`INSERT INTO vendors (id, source_url, vendor_type, doc, scraped_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (source_url) DO UPDATE SET
		   vendor_type = EXCLUDED.vendor_type,
		   doc         = jsonb_set(EXCLUDED.doc, '{id}', to_jsonb(vendors.id)),
		   scraped_at  = EXCLUDED.scraped_at
		 RETURNING id`,
		rec.ID, rec.SourceURL, rec.VendorType, doc, rec.ScrapedAt.UTC(),
	).Scan(&canonicalID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: upsert vendor")
	}

	rec.ID = canonicalID
	return &rec, nil
}

func (s *PostgresStore) ListVendorsByType(ctx context.Context, vendorType string) ([]model.VendorRecord, error) {
	return s.listVendors(ctx,
		`SELECT doc FROM vendors WHERE vendor_type = $1 ORDER BY scraped_at`, vendorType)
}

func (s *PostgresStore) ListVendors(ctx context.Context) ([]model.VendorRecord, error) {
	return s.listVendors(ctx, `SELECT doc FROM vendors ORDER BY scraped_at`)
}

func (s *PostgresStore) listVendors(ctx context.Context, query string, args ...any) ([]model.VendorRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list vendors")
	}
	defer rows.Close()

	var out []model.VendorRecord
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "postgres: scan vendor row")
		}
		v, err := unmarshalVendor(string(doc))
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate vendors")
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM users WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "postgres: get user")
	}
	var u model.User
	if err := json.Unmarshal(doc, &u); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal user")
	}
	return &u, nil
}

func (s *PostgresStore) SaveUser(ctx context.Context, u *model.User) error {
	doc, err := json.Marshal(u)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal user")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO users (id, doc) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc`,
		u.ID, doc,
	)
	return eris.Wrap(err, "postgres: save user")
}

func (s *PostgresStore) AddUserVendors(ctx context.Context, userID string, vendorIDs []string) error {
	if len(vendorIDs) == 0 {
		return nil
	}
	return s.mutateUser(ctx, userID, func(u *model.User) bool {
		merged, changed := unionIDs(u.VendorIDs, vendorIDs)
		u.VendorIDs = merged
		return changed
	})
}

func (s *PostgresStore) SetBookedVendors(ctx context.Context, userID string, booked []model.BookedVendor) error {
	return s.mutateUser(ctx, userID, func(u *model.User) bool {
		u.BookedVendors = booked
		return true
	})
}

func (s *PostgresStore) mutateUser(ctx context.Context, userID string, fn func(*model.User) bool) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin user update")
	}
	defer tx.Rollback(ctx)

	var doc []byte
	err = tx.QueryRow(ctx,
		`SELECT doc FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return eris.Wrap(err, "postgres: get user for update")
	}

	var u model.User
	if err := json.Unmarshal(doc, &u); err != nil {
		return eris.Wrap(err, "postgres: unmarshal user")
	}

	if !fn(&u) {
		return tx.Commit(ctx)
	}

	updated, err := json.Marshal(&u)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal user")
	}
	if _, err := tx.Exec(ctx,
		`UPDATE users SET doc = $1 WHERE id = $2`, updated, userID,
	); err != nil {
		return eris.Wrap(err, "postgres: update user")
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit user update")
}

func (s *PostgresStore) GetToDoList(ctx context.Context, userID string) (*model.ToDoList, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM todo_lists WHERE user_id = $1`, userID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "postgres: get todo list")
	}
	var list model.ToDoList
	if err := json.Unmarshal(doc, &list); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal todo list")
	}
	return &list, nil
}

func (s *PostgresStore) SaveToDoList(ctx context.Context, list *model.ToDoList) error {
	doc, err := json.Marshal(list)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal todo list")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO todo_lists (user_id, doc) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET doc = EXCLUDED.doc`,
		list.UserID, doc,
	)
	return eris.Wrap(err, "postgres: save todo list")
}
