// Package sqldb implements store.Store over database/sql. The sqlite and
// postgres packages supply the driver, schema and Dialect.
package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/humidorapp/humidor-server/internal/domain"
	"github.com/humidorapp/humidor-server/internal/store"
)

// Store is a database/sql backed store.Store.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

var _ store.Store = (*Store)(nil)

// New wraps an open, migrated database.
func New(db *sql.DB, dialect Dialect, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{db: db, dialect: dialect, logger: logger}
}

// DB exposes the underlying handle for migrations and tests.
func (s *Store) DB() *sql.DB { return s.db }

// Driver implements store.Store.
func (s *Store) Driver() string { return s.dialect.Name }

// Ping implements store.Store.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close implements store.Store.
func (s *Store) Close() error {
	s.logger.Info("closing database", "driver", s.dialect.Name)
	return s.db.Close()
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// cigarColumns must match the scan order in scanCigar.
const cigarColumns = `id, user_id, name, brand, origin, size, wrapper, strength,
	price, quantity, purchase_date, notes, created_at, updated_at`

func scanCigar(scanner interface{ Scan(dest ...any) error }) (*domain.Cigar, error) {
	var (
		c                domain.Cigar
		bought           timeValue
		created, updated timeValue
	)
	err := scanner.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Brand, &c.Origin, &c.Size, &c.Wrapper, &c.Strength,
		&c.Price, &c.Quantity, &bought, &c.Notes, &created, &updated,
	)
	if err != nil {
		return nil, err
	}
	c.PurchaseDate = bought.ptr()
	c.CreatedAt = created.t
	c.UpdatedAt = updated.t
	return &c, nil
}

// ListCigars implements store.Inventory.
func (s *Store) ListCigars(ctx context.Context, userID string) ([]domain.Cigar, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(
		`SELECT `+cigarColumns+` FROM cigars WHERE user_id = ? ORDER BY created_at, id`), userID)
	if err != nil {
		return nil, fmt.Errorf("list cigars: %w", err)
	}
	defer rows.Close()

	out := []domain.Cigar{}
	for rows.Next() {
		c, err := scanCigar(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cigar: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// GetCigar implements store.Inventory.
func (s *Store) GetCigar(ctx context.Context, userID, id string) (*domain.Cigar, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.Rebind(
		`SELECT `+cigarColumns+` FROM cigars WHERE user_id = ? AND id = ?`), userID, id)
	c, err := scanCigar(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cigar: %w", err)
	}
	return c, nil
}

// CreateCigar implements store.Inventory.
func (s *Store) CreateCigar(ctx context.Context, c *domain.Cigar) error {
	return s.insertCigar(ctx, s.db, c)
}

func (s *Store) insertCigar(ctx context.Context, ex execer, c *domain.Cigar) error {
	if err := store.CheckKeys(c.UserID, c.ID); err != nil {
		return err
	}
	_, err := ex.ExecContext(ctx, s.dialect.Rebind(`INSERT INTO cigars (`+cigarColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		c.ID, c.UserID, c.Name, c.Brand, c.Origin, c.Size, c.Wrapper, c.Strength,
		c.Price, c.Quantity, s.dialect.nullTime(c.PurchaseDate), c.Notes,
		s.dialect.EncodeTime(c.CreatedAt), s.dialect.EncodeTime(c.UpdatedAt),
	)
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("insert cigar: %w", err)
	}
	return nil
}

// UpdateCigar implements store.Inventory.
func (s *Store) UpdateCigar(ctx context.Context, c *domain.Cigar) error {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(`UPDATE cigars SET
		name = ?, brand = ?, origin = ?, size = ?, wrapper = ?, strength = ?,
		price = ?, quantity = ?, purchase_date = ?, notes = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`),
		c.Name, c.Brand, c.Origin, c.Size, c.Wrapper, c.Strength,
		c.Price, c.Quantity, s.dialect.nullTime(c.PurchaseDate), c.Notes,
		s.dialect.EncodeTime(c.UpdatedAt), c.UserID, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update cigar: %w", err)
	}
	return expectOneRow(res)
}

// DeleteCigar implements store.Inventory.
func (s *Store) DeleteCigar(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(
		`DELETE FROM cigars WHERE user_id = ? AND id = ?`), userID, id)
	if err != nil {
		return fmt.Errorf("delete cigar: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// archiveColumns must match the scan order in scanArchived. seq is
// assigned by the database and is not part of inserts.
const archiveColumns = `id, user_id, cigar_id, cigar_name, cigar_brand, start_time, end_time,
	duration, rating, burn_quality, draw_quality, ash_quality, flavors, notes, environment, pairing`

func scanArchived(scanner interface{ Scan(dest ...any) error }) (*domain.ArchivedTasting, error) {
	var (
		t               domain.ArchivedTasting
		start, end      timeValue
		burn, draw, ash sql.NullInt64
		flavors         []byte
	)
	err := scanner.Scan(
		&t.Seq, &t.ID, &t.UserID, &t.CigarID, &t.CigarName, &t.CigarBrand, &start, &end,
		&t.Duration, &t.Rating, &burn, &draw, &ash, &flavors, &t.Notes, &t.Environment, &t.Pairing,
	)
	if err != nil {
		return nil, err
	}
	t.StartTime, t.EndTime = start.t, end.t
	t.BurnQuality, t.DrawQuality, t.AshQuality = intPtr(burn), intPtr(draw), intPtr(ash)

	t.Flavors = []string{}
	if len(flavors) > 0 {
		if err := json.Unmarshal(flavors, &t.Flavors); err != nil {
			return nil, fmt.Errorf("decode flavors: %w", err)
		}
	}
	return &t, nil
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

// ListArchived implements store.Archive.
func (s *Store) ListArchived(ctx context.Context, userID string) ([]domain.ArchivedTasting, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(
		`SELECT seq, `+archiveColumns+` FROM archived_tastings WHERE user_id = ? ORDER BY seq`), userID)
	if err != nil {
		return nil, fmt.Errorf("list archived tastings: %w", err)
	}
	defer rows.Close()

	out := []domain.ArchivedTasting{}
	for rows.Next() {
		t, err := scanArchived(rows)
		if err != nil {
			return nil, fmt.Errorf("scan archived tasting: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// AppendArchived implements store.Archive.
func (s *Store) AppendArchived(ctx context.Context, rec *domain.ArchivedTasting) error {
	return s.insertArchived(ctx, s.db, rec)
}

func (s *Store) insertArchived(ctx context.Context, ex execer, rec *domain.ArchivedTasting) error {
	if err := store.CheckKeys(rec.UserID, rec.ID); err != nil {
		return err
	}
	flavors := rec.Flavors
	if flavors == nil {
		flavors = []string{}
	}
	encoded, err := json.Marshal(flavors)
	if err != nil {
		return fmt.Errorf("encode flavors: %w", err)
	}

	var seq int64
	err = ex.QueryRowContext(ctx, s.dialect.Rebind(`INSERT INTO archived_tastings (`+archiveColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING seq`),
		rec.ID, rec.UserID, rec.CigarID, rec.CigarName, rec.CigarBrand,
		s.dialect.EncodeTime(rec.StartTime), s.dialect.EncodeTime(rec.EndTime),
		rec.Duration, rec.Rating, nullInt(rec.BurnQuality), nullInt(rec.DrawQuality), nullInt(rec.AshQuality),
		string(encoded), rec.Notes, rec.Environment, rec.Pairing,
	).Scan(&seq)
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("insert archived tasting: %w", err)
	}
	rec.Seq = uint64(seq)
	return nil
}

// LoadActive implements store.ActiveSlot.
func (s *Store) LoadActive(ctx context.Context, userID string) ([]domain.ActiveTasting, error) {
	return s.loadActive(ctx, s.db, userID)
}

func (s *Store) loadActive(ctx context.Context, ex execer, userID string) ([]domain.ActiveTasting, error) {
	var raw []byte
	err := ex.QueryRowContext(ctx, s.dialect.Rebind(
		`SELECT snapshot FROM active_tastings WHERE user_id = ?`), userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []domain.ActiveTasting{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load active tastings: %w", err)
	}

	out := []domain.ActiveTasting{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode active tastings: %w", err)
	}
	if out == nil {
		out = []domain.ActiveTasting{}
	}
	return out, nil
}

// SaveActive implements store.ActiveSlot.
func (s *Store) SaveActive(ctx context.Context, userID string, active []domain.ActiveTasting) error {
	return s.saveActive(ctx, s.db, userID, active)
}

func (s *Store) saveActive(ctx context.Context, ex execer, userID string, active []domain.ActiveTasting) error {
	if active == nil {
		active = []domain.ActiveTasting{}
	}
	encoded, err := json.Marshal(active)
	if err != nil {
		return fmt.Errorf("encode active tastings: %w", err)
	}

	_, err = ex.ExecContext(ctx, s.dialect.Rebind(`INSERT INTO active_tastings (user_id, snapshot)
		VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET snapshot = excluded.snapshot`),
		userID, string(encoded))
	if err != nil {
		return fmt.Errorf("save active tastings: %w", err)
	}
	return nil
}

// CompleteTasting implements store.Store.
func (s *Store) CompleteTasting(ctx context.Context, rec *domain.ArchivedTasting, remaining []domain.ActiveTasting) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.insertArchived(ctx, tx, rec); err != nil {
		rec.Seq = 0
		return err
	}
	if err := s.saveActive(ctx, tx, rec.UserID, remaining); err != nil {
		rec.Seq = 0
		return err
	}
	if err := tx.Commit(); err != nil {
		rec.Seq = 0
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RestoreOwner implements store.Store.
func (s *Store) RestoreOwner(ctx context.Context, userID string, data *store.OwnerData) error {
	if userID == "" {
		return store.ErrInvalidInput
	}
	if err := data.CheckOwner(userID); err != nil {
		return err
	}

	err := s.restoreOwner(ctx, userID, data)
	if err != nil {
		for i := range data.Archived {
			data.Archived[i].Seq = 0
		}
		return err
	}

	s.logger.Info("owner data restored",
		"driver", s.dialect.Name,
		"user_id", userID,
		"cigars", len(data.Cigars),
		"archived", len(data.Archived),
		"active", len(data.Active))
	return nil
}

func (s *Store) restoreOwner(ctx context.Context, userID string, data *store.OwnerData) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var held int
	err = tx.QueryRowContext(ctx, s.dialect.Rebind(`SELECT
		(SELECT COUNT(*) FROM cigars WHERE user_id = ?) +
		(SELECT COUNT(*) FROM archived_tastings WHERE user_id = ?)`), userID, userID).Scan(&held)
	if err != nil {
		return fmt.Errorf("count owner records: %w", err)
	}
	active, err := s.loadActive(ctx, tx, userID)
	if err != nil {
		return err
	}
	if held+len(active) > 0 {
		return store.ErrNotEmpty
	}

	for i := range data.Cigars {
		if err := s.insertCigar(ctx, tx, &data.Cigars[i]); err != nil {
			return err
		}
	}
	for i := range data.Archived {
		if err := s.insertArchived(ctx, tx, &data.Archived[i]); err != nil {
			return err
		}
	}
	if len(data.Active) > 0 {
		if err := s.saveActive(ctx, tx, userID, data.Active); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
