package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/artpar/mingalaroo/internal/core/guest"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeLayout is fixed-width so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// =============================================================================
// Executor Interface - Shared by DB and Transaction
// =============================================================================

// executor abstracts database operations that can be performed on both
// a database connection and a transaction.
type executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sqlx.Open("sqlite3", dsn+sep+"_foreign_keys=on")
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to open database", ErrConnectionFailed)
	}
	// Every connection to :memory: is a separate database.
	if strings.HasPrefix(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return NewStoreError("Ping", "", "", err.Error(), ErrConnectionFailed)
	}
	return nil
}

// =============================================================================
// Guest Operations
// =============================================================================

// guestRow represents a guest row in the database.
type guestRow struct {
	ID              string `db:"id"`
	OwnerID         string `db:"owner_id"`
	GuestName       string `db:"guest_name"`
	Slug            string `db:"slug"`
	GeneratedLink   string `db:"generated_link"`
	AttendanceState string `db:"attendance_state"`
	GuestCount      string `db:"guest_count"`
	GiftStatus      string `db:"gift_status"`
	CreatedAt       string `db:"created_at"`
	UpdatedAt       string `db:"updated_at"`
}

func (s *SQLiteStore) CreateGuest(ctx context.Context, g *guest.Guest) error {
	return createGuest(ctx, s.db, g)
}

func (s *SQLiteStore) GetGuest(ctx context.Context, ownerID, id string) (*guest.Guest, error) {
	return getGuest(ctx, s.db, ownerID, id)
}

func (s *SQLiteStore) UpdateGuest(ctx context.Context, g *guest.Guest) error {
	return updateGuest(ctx, s.db, g)
}

func (s *SQLiteStore) DeleteGuest(ctx context.Context, ownerID, id string) error {
	return deleteGuest(ctx, s.db, ownerID, id)
}

func (s *SQLiteStore) ListGuests(ctx context.Context, ownerID string, opts ListOptions) ([]guest.Guest, error) {
	return listGuests(ctx, s.db, ownerID, opts)
}

func (s *SQLiteStore) UpdateAttendanceByName(ctx context.Context, ownerID, name string, state guest.AttendanceState, guestCount string) (int64, error) {
	return updateAttendanceByName(ctx, s.db, ownerID, name, state, guestCount)
}

// =============================================================================
// Transaction Support
// =============================================================================

func (s *SQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return NewStoreError("WithTx", "", "", "failed to begin transaction", ErrTxFailed)
	}

	txS := &txSQLiteStore{tx: tx}

	if err := fn(txS); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return NewStoreError("WithTx", "", "", fmt.Sprintf("rollback failed after error: %v", err), ErrTxFailed)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return NewStoreError("WithTx", "", "", "failed to commit transaction", ErrTxFailed)
	}

	return nil
}

// txSQLiteStore implements Store within a transaction.
type txSQLiteStore struct {
	tx *sqlx.Tx
}

func (s *txSQLiteStore) CreateGuest(ctx context.Context, g *guest.Guest) error {
	return createGuest(ctx, s.tx, g)
}

func (s *txSQLiteStore) GetGuest(ctx context.Context, ownerID, id string) (*guest.Guest, error) {
	return getGuest(ctx, s.tx, ownerID, id)
}

func (s *txSQLiteStore) UpdateGuest(ctx context.Context, g *guest.Guest) error {
	return updateGuest(ctx, s.tx, g)
}

func (s *txSQLiteStore) DeleteGuest(ctx context.Context, ownerID, id string) error {
	return deleteGuest(ctx, s.tx, ownerID, id)
}

func (s *txSQLiteStore) ListGuests(ctx context.Context, ownerID string, opts ListOptions) ([]guest.Guest, error) {
	return listGuests(ctx, s.tx, ownerID, opts)
}

func (s *txSQLiteStore) UpdateAttendanceByName(ctx context.Context, ownerID, name string, state guest.AttendanceState, guestCount string) (int64, error) {
	return updateAttendanceByName(ctx, s.tx, ownerID, name, state, guestCount)
}

func (s *txSQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	// Already in a transaction, just run the function
	return fn(s)
}

func (s *txSQLiteStore) Ping(ctx context.Context) error {
	return nil
}

func (s *txSQLiteStore) Close() error {
	return nil
}

// =============================================================================
// Shared Implementation Functions
// =============================================================================

func createGuest(ctx context.Context, exec executor, g *guest.Guest) error {
	query := `
		INSERT INTO guests (
			id, owner_id, guest_name, slug, generated_link,
			attendance_state, guest_count, gift_status,
			created_at, updated_at
		) VALUES (
			:id, :owner_id, :guest_name, :slug, :generated_link,
			:attendance_state, :guest_count, :gift_status,
			:created_at, :updated_at
		)`

	_, err := exec.NamedExecContext(ctx, query, guestToRow(g))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: guests.id") {
			return NewStoreError("CreateGuest", "guest", g.ID, "guest with this ID already exists", ErrDuplicateID)
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed: guests.owner_id, guests.slug") {
			return NewStoreError("CreateGuest", "guest", g.ID, fmt.Sprintf("a guest named %q already exists", g.Name), ErrDuplicateSlug)
		}
		return NewStoreError("CreateGuest", "guest", g.ID, err.Error(), err)
	}

	return nil
}

func getGuest(ctx context.Context, exec executor, ownerID, id string) (*guest.Guest, error) {
	query := `SELECT * FROM guests WHERE id = ? AND owner_id = ?`

	var row guestRow
	err := exec.GetContext(ctx, &row, query, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetGuest", "guest", id, "guest not found", ErrNotFound)
		}
		return nil, NewStoreError("GetGuest", "guest", id, err.Error(), err)
	}

	return rowToGuest(&row)
}

func updateGuest(ctx context.Context, exec executor, g *guest.Guest) error {
	query := `
		UPDATE guests SET
			guest_name = :guest_name,
			slug = :slug,
			generated_link = :generated_link,
			attendance_state = :attendance_state,
			guest_count = :guest_count,
			gift_status = :gift_status,
			updated_at = :updated_at
		WHERE id = :id AND owner_id = :owner_id`

	result, err := exec.NamedExecContext(ctx, query, guestToRow(g))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: guests.owner_id, guests.slug") {
			return NewStoreError("UpdateGuest", "guest", g.ID, fmt.Sprintf("a guest named %q already exists", g.Name), ErrDuplicateSlug)
		}
		return NewStoreError("UpdateGuest", "guest", g.ID, err.Error(), err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("UpdateGuest", "guest", g.ID, "guest not found", ErrNotFound)
	}

	return nil
}

func deleteGuest(ctx context.Context, exec executor, ownerID, id string) error {
	query := `DELETE FROM guests WHERE id = ? AND owner_id = ?`

	result, err := exec.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return NewStoreError("DeleteGuest", "guest", id, err.Error(), err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("DeleteGuest", "guest", id, "guest not found", ErrNotFound)
	}

	return nil
}

func listGuests(ctx context.Context, exec executor, ownerID string, opts ListOptions) ([]guest.Guest, error) {
	opts = opts.Normalize()
	query := `SELECT * FROM guests WHERE owner_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

	var rows []guestRow
	err := exec.SelectContext(ctx, &rows, query, ownerID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, NewStoreError("ListGuests", "guest", "", err.Error(), err)
	}

	guests := make([]guest.Guest, 0, len(rows))
	for _, row := range rows {
		g, err := rowToGuest(&row)
		if err != nil {
			return nil, err
		}
		guests = append(guests, *g)
	}

	return guests, nil
}

func updateAttendanceByName(ctx context.Context, exec executor, ownerID, name string, state guest.AttendanceState, guestCount string) (int64, error) {
	query := `
		UPDATE guests SET
			attendance_state = ?,
			guest_count = ?,
			updated_at = ?
		WHERE (? = '' OR owner_id = ?)
		  AND (guest_name = ? OR slug = ?)`

	now := time.Now().UTC().Format(timeLayout)
	result, err := exec.ExecContext(ctx, query,
		string(state), guestCount, now,
		ownerID, ownerID,
		name, matchSlug(name),
	)
	if err != nil {
		return 0, NewStoreError("UpdateAttendanceByName", "guest", name, err.Error(), err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected, nil
}

// =============================================================================
// Row Conversion
// =============================================================================

func guestToRow(g *guest.Guest) guestRow {
	return guestRow{
		ID:              g.ID,
		OwnerID:         g.OwnerID,
		GuestName:       g.Name,
		Slug:            g.Slug,
		GeneratedLink:   g.GeneratedLink,
		AttendanceState: string(g.AttendanceState),
		GuestCount:      g.GuestCount,
		GiftStatus:      string(g.GiftStatus),
		CreatedAt:       g.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:       g.UpdatedAt.UTC().Format(timeLayout),
	}
}

func rowToGuest(row *guestRow) (*guest.Guest, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return nil, NewStoreError("rowToGuest", "guest", row.ID, "invalid created_at", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, row.UpdatedAt)
	if err != nil {
		return nil, NewStoreError("rowToGuest", "guest", row.ID, "invalid updated_at", err)
	}

	return &guest.Guest{
		ID:              row.ID,
		Name:            row.GuestName,
		Slug:            row.Slug,
		GeneratedLink:   row.GeneratedLink,
		AttendanceState: guest.AttendanceState(row.AttendanceState),
		GuestCount:      row.GuestCount,
		GiftStatus:      guest.GiftStatus(row.GiftStatus),
		OwnerID:         row.OwnerID,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, nil
}
