package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/mingalaroo/internal/core/guest"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// queryTimeout bounds every single Postgres statement.
const queryTimeout = 3 * time.Second

// postgresSchema is applied on connect. Statements are idempotent.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS guests (
    id               TEXT PRIMARY KEY,
    owner_id         TEXT NOT NULL,
    guest_name       TEXT NOT NULL,
    slug             TEXT NOT NULL,
    generated_link   TEXT NOT NULL,
    attendance_state TEXT NOT NULL DEFAULT 'pending'
        CHECK (attendance_state IN ('pending', 'attending', 'not_attending')),
    guest_count      TEXT NOT NULL DEFAULT '-',
    gift_status      TEXT NOT NULL DEFAULT 'not_yet'
        CHECK (gift_status IN ('not_yet', 'gifted')),
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT guests_owner_slug_key UNIQUE (owner_id, slug)
);
CREATE INDEX IF NOT EXISTS idx_guests_owner_created ON guests (owner_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_guests_name ON guests (guest_name);
`

const guestCols = `id, owner_id, guest_name, slug, generated_link,
attendance_state, guest_count, gift_status, created_at, updated_at`

// pgExecutor is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// =============================================================================
// PostgresStore
// =============================================================================

// PostgresStore implements Store on a hosted Postgres database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and bootstraps the schema.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, NewStoreError("NewPostgresStore", "", "", "invalid dsn: "+err.Error(), ErrConnectionFailed)
	}
	cfg.MinConns = 1
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = time.Hour
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, NewStoreError("NewPostgresStore", "", "", "failed to open pool", ErrConnectionFailed)
	}

	s := &PostgresStore{pool: pool}
	if err := s.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, NewStoreError("NewPostgresStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return s, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if err := s.pool.Ping(ctx); err != nil {
		return NewStoreError("Ping", "", "", err.Error(), ErrConnectionFailed)
	}
	return nil
}

func (s *PostgresStore) CreateGuest(ctx context.Context, g *guest.Guest) error {
	return pgCreateGuest(ctx, s.pool, g)
}

func (s *PostgresStore) GetGuest(ctx context.Context, ownerID, id string) (*guest.Guest, error) {
	return pgGetGuest(ctx, s.pool, ownerID, id)
}

func (s *PostgresStore) UpdateGuest(ctx context.Context, g *guest.Guest) error {
	return pgUpdateGuest(ctx, s.pool, g)
}

func (s *PostgresStore) DeleteGuest(ctx context.Context, ownerID, id string) error {
	return pgDeleteGuest(ctx, s.pool, ownerID, id)
}

func (s *PostgresStore) ListGuests(ctx context.Context, ownerID string, opts ListOptions) ([]guest.Guest, error) {
	return pgListGuests(ctx, s.pool, ownerID, opts)
}

func (s *PostgresStore) UpdateAttendanceByName(ctx context.Context, ownerID, name string, state guest.AttendanceState, guestCount string) (int64, error) {
	return pgUpdateAttendanceByName(ctx, s.pool, ownerID, name, state, guestCount)
}

func (s *PostgresStore) WithTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return NewStoreError("WithTx", "", "", "failed to begin transaction", ErrTxFailed)
	}

	if err := fn(&txPostgresStore{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return NewStoreError("WithTx", "", "", fmt.Sprintf("rollback failed after error: %v", err), ErrTxFailed)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return NewStoreError("WithTx", "", "", "failed to commit transaction", ErrTxFailed)
	}
	return nil
}

// txPostgresStore implements Store within a transaction.
type txPostgresStore struct {
	tx pgx.Tx
}

func (s *txPostgresStore) CreateGuest(ctx context.Context, g *guest.Guest) error {
	return pgCreateGuest(ctx, s.tx, g)
}

func (s *txPostgresStore) GetGuest(ctx context.Context, ownerID, id string) (*guest.Guest, error) {
	return pgGetGuest(ctx, s.tx, ownerID, id)
}

func (s *txPostgresStore) UpdateGuest(ctx context.Context, g *guest.Guest) error {
	return pgUpdateGuest(ctx, s.tx, g)
}

func (s *txPostgresStore) DeleteGuest(ctx context.Context, ownerID, id string) error {
	return pgDeleteGuest(ctx, s.tx, ownerID, id)
}

func (s *txPostgresStore) ListGuests(ctx context.Context, ownerID string, opts ListOptions) ([]guest.Guest, error) {
	return pgListGuests(ctx, s.tx, ownerID, opts)
}

func (s *txPostgresStore) UpdateAttendanceByName(ctx context.Context, ownerID, name string, state guest.AttendanceState, guestCount string) (int64, error) {
	return pgUpdateAttendanceByName(ctx, s.tx, ownerID, name, state, guestCount)
}

func (s *txPostgresStore) WithTx(ctx context.Context, fn func(Store) error) error {
	return fn(s)
}

func (s *txPostgresStore) Ping(ctx context.Context) error { return nil }
func (s *txPostgresStore) Close() error                   { return nil }

// =============================================================================
// Shared Implementation Functions
// =============================================================================

func pgCreateGuest(ctx context.Context, exec pgExecutor, g *guest.Guest) error {
	const q = `INSERT INTO guests (` + guestCols + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := exec.Exec(ctx, q,
		g.ID, g.OwnerID, g.Name, g.Slug, g.GeneratedLink,
		string(g.AttendanceState), g.GuestCount, string(g.GiftStatus),
		g.CreatedAt.UTC(), g.UpdatedAt.UTC(),
	)
	if err != nil {
		return mapPgError("CreateGuest", g, err)
	}
	return nil
}

func pgGetGuest(ctx context.Context, exec pgExecutor, ownerID, id string) (*guest.Guest, error) {
	const q = `SELECT ` + guestCols + ` FROM guests WHERE id=$1 AND owner_id=$2`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	g, err := scanGuest(exec.QueryRow(ctx, q, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NewStoreError("GetGuest", "guest", id, "guest not found", ErrNotFound)
	}
	if err != nil {
		return nil, NewStoreError("GetGuest", "guest", id, err.Error(), err)
	}
	return g, nil
}

func pgUpdateGuest(ctx context.Context, exec pgExecutor, g *guest.Guest) error {
	const q = `UPDATE guests SET
guest_name=$3, slug=$4, generated_link=$5,
attendance_state=$6, guest_count=$7, gift_status=$8, updated_at=$9
WHERE id=$1 AND owner_id=$2`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ct, err := exec.Exec(ctx, q,
		g.ID, g.OwnerID, g.Name, g.Slug, g.GeneratedLink,
		string(g.AttendanceState), g.GuestCount, string(g.GiftStatus),
		g.UpdatedAt.UTC(),
	)
	if err != nil {
		return mapPgError("UpdateGuest", g, err)
	}
	if ct.RowsAffected() == 0 {
		return NewStoreError("UpdateGuest", "guest", g.ID, "guest not found", ErrNotFound)
	}
	return nil
}

func pgDeleteGuest(ctx context.Context, exec pgExecutor, ownerID, id string) error {
	const q = `DELETE FROM guests WHERE id=$1 AND owner_id=$2`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ct, err := exec.Exec(ctx, q, id, ownerID)
	if err != nil {
		return NewStoreError("DeleteGuest", "guest", id, err.Error(), err)
	}
	if ct.RowsAffected() == 0 {
		return NewStoreError("DeleteGuest", "guest", id, "guest not found", ErrNotFound)
	}
	return nil
}

func pgListGuests(ctx context.Context, exec pgExecutor, ownerID string, opts ListOptions) ([]guest.Guest, error) {
	opts = opts.Normalize()
	const q = `SELECT ` + guestCols + ` FROM guests WHERE owner_id=$1
ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := exec.Query(ctx, q, ownerID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, NewStoreError("ListGuests", "guest", "", err.Error(), err)
	}
	defer rows.Close()

	guests := make([]guest.Guest, 0)
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, NewStoreError("ListGuests", "guest", "", err.Error(), err)
		}
		guests = append(guests, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStoreError("ListGuests", "guest", "", err.Error(), err)
	}
	return guests, nil
}

func pgUpdateAttendanceByName(ctx context.Context, exec pgExecutor, ownerID, name string, state guest.AttendanceState, guestCount string) (int64, error) {
	const q = `UPDATE guests SET attendance_state=$1, guest_count=$2, updated_at=now()
WHERE ($3 = '' OR owner_id=$3) AND (guest_name=$4 OR slug=$5)`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ct, err := exec.Exec(ctx, q, string(state), guestCount, ownerID, name, matchSlug(name))
	if err != nil {
		return 0, NewStoreError("UpdateAttendanceByName", "guest", name, err.Error(), err)
	}
	return ct.RowsAffected(), nil
}

func scanGuest(row pgx.Row) (*guest.Guest, error) {
	var (
		g                 guest.Guest
		attendance, gifts string
	)
	err := row.Scan(
		&g.ID, &g.OwnerID, &g.Name, &g.Slug, &g.GeneratedLink,
		&attendance, &g.GuestCount, &gifts,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.AttendanceState = guest.AttendanceState(attendance)
	g.GiftStatus = guest.GiftStatus(gifts)
	return &g, nil
}

func mapPgError(op string, g *guest.Guest, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if pgErr.ConstraintName == "guests_owner_slug_key" {
			return NewStoreError(op, "guest", g.ID, fmt.Sprintf("a guest named %q already exists", g.Name), ErrDuplicateSlug)
		}
		return NewStoreError(op, "guest", g.ID, "guest with this ID already exists", ErrDuplicateID)
	}
	return NewStoreError(op, "guest", g.ID, err.Error(), err)
}
