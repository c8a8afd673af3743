// Package badger implements store.Store on an embedded Badger database.
//
// Key layout:
//
//	cigar:{n}.{user}:{id}          domain.Cigar
//	archive:{n}.{user}:{seq:020d}  domain.ArchivedTasting
//	archiveid:{n}.{user}:{id}      archive key of the record with that id
//	active:{user}                  []domain.ActiveTasting
//
// {n} is the byte length of the user id (see Entity.Key).
package badger

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/humidorapp/humidor-server/internal/domain"
	"github.com/humidorapp/humidor-server/internal/store"
)

var seqKey = []byte("seq:archive")

// Store is a Badger-backed store.Store.
type Store struct {
	db     *badger.DB
	seq    *badger.Sequence
	logger *slog.Logger

	cigars    Entity[domain.Cigar]
	archive   Entity[domain.ArchivedTasting]
	archiveID Entity[string]
	active    Entity[[]domain.ActiveTasting]
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) a database in dir.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	opts.SyncWrites = true
	opts.CompactL0OnClose = true
	return open(opts, logger)
}

// OpenInMemory opens a throwaway database for tests and dry runs.
func OpenInMemory(logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	seq, err := db.GetSequence(seqKey, 100)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open archive sequence: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Info("badger database opened", "path", opts.Dir, "in_memory", opts.InMemory)

	return &Store{
		db:        db,
		seq:       seq,
		logger:    logger,
		cigars:    NewEntity[domain.Cigar]("cigar"),
		archive:   NewEntity[domain.ArchivedTasting]("archive"),
		archiveID: NewEntity[string]("archiveid"),
		active:    NewEntity[[]domain.ActiveTasting]("active"),
	}, nil
}

// Driver implements store.Store.
func (s *Store) Driver() string { return "badger" }

// Ping reports whether the database is still open.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return fmt.Errorf("badger db is closed")
	}
	return nil
}

// Close releases the sequence lease and closes the database.
func (s *Store) Close() error {
	s.logger.Info("closing badger database")
	if err := s.seq.Release(); err != nil {
		s.logger.Warn("release archive sequence", "error", err)
	}
	return s.db.Close()
}

// ListCigars implements store.Inventory.
func (s *Store) ListCigars(ctx context.Context, userID string) ([]domain.Cigar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []domain.Cigar
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = s.cigars.Scan(txn, s.cigars.Key(userID, ""))
		return err
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b domain.Cigar) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// GetCigar implements store.Inventory.
func (s *Store) GetCigar(ctx context.Context, userID, id string) (*domain.Cigar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var c *domain.Cigar
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		c, err = s.cigars.Get(txn, s.cigars.Key(userID, id))
		return err
	})
	return c, err
}

// CreateCigar implements store.Inventory.
func (s *Store) CreateCigar(ctx context.Context, c *domain.Cigar) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.CheckKeys(c.UserID, c.ID); err != nil {
		return err
	}

	key := s.cigars.Key(c.UserID, c.ID)
	return s.db.Update(func(txn *badger.Txn) error {
		exists, err := s.cigars.Exists(txn, key)
		if err != nil {
			return err
		}
		if exists {
			return store.ErrAlreadyExists
		}
		return s.cigars.Set(txn, key, c)
	})
}

// UpdateCigar implements store.Inventory.
func (s *Store) UpdateCigar(ctx context.Context, c *domain.Cigar) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := s.cigars.Key(c.UserID, c.ID)
	return s.db.Update(func(txn *badger.Txn) error {
		exists, err := s.cigars.Exists(txn, key)
		if err != nil {
			return err
		}
		if !exists {
			return store.ErrNotFound
		}
		return s.cigars.Set(txn, key, c)
	})
}

// DeleteCigar implements store.Inventory.
func (s *Store) DeleteCigar(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := s.cigars.Key(userID, id)
	return s.db.Update(func(txn *badger.Txn) error {
		exists, err := s.cigars.Exists(txn, key)
		if err != nil {
			return err
		}
		if !exists {
			return store.ErrNotFound
		}
		return txn.Delete(key)
	})
}

// ListArchived implements store.Archive. Keys embed the zero-padded
// sequence, so key order is archival order.
func (s *Store) ListArchived(ctx context.Context, userID string) ([]domain.ArchivedTasting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []domain.ArchivedTasting
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = s.archive.Scan(txn, s.archive.Key(userID, ""))
		return err
	})
	return out, err
}

// AppendArchived implements store.Archive.
func (s *Store) AppendArchived(ctx context.Context, rec *domain.ArchivedTasting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.CheckKeys(rec.UserID, rec.ID); err != nil {
		return err
	}
	if err := s.assignSeq(rec); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return s.putArchived(txn, rec)
	})
}

// LoadActive implements store.ActiveSlot.
func (s *Store) LoadActive(ctx context.Context, userID string) ([]domain.ActiveTasting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := []domain.ActiveTasting{}
	err := s.db.View(func(txn *badger.Txn) error {
		snap, err := s.active.Get(txn, s.active.Key(userID))
		if store.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if *snap != nil {
			out = *snap
		}
		return nil
	})
	return out, err
}

// SaveActive implements store.ActiveSlot.
func (s *Store) SaveActive(ctx context.Context, userID string, active []domain.ActiveTasting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return s.putActive(txn, userID, active)
	})
}

// CompleteTasting implements store.Store.
func (s *Store) CompleteTasting(ctx context.Context, rec *domain.ArchivedTasting, remaining []domain.ActiveTasting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.CheckKeys(rec.UserID, rec.ID); err != nil {
		return err
	}
	if err := s.assignSeq(rec); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := s.putArchived(txn, rec); err != nil {
			return err
		}
		return s.putActive(txn, rec.UserID, remaining)
	})
}

func (s *Store) assignSeq(rec *domain.ArchivedTasting) error {
	n, err := s.seq.Next()
	if err != nil {
		return fmt.Errorf("next archive sequence: %w", err)
	}
	// Sequences start at zero; Seq zero means "unassigned".
	rec.Seq = n + 1
	return nil
}

func (s *Store) putArchived(txn *badger.Txn, rec *domain.ArchivedTasting) error {
	idKey := s.archiveID.Key(rec.UserID, rec.ID)
	exists, err := s.archiveID.Exists(txn, idKey)
	if err != nil {
		return err
	}
	if exists {
		return store.ErrAlreadyExists
	}

	key := s.archive.Key(rec.UserID, fmt.Sprintf("%020d", rec.Seq))
	if err := s.archive.Set(txn, key, rec); err != nil {
		return err
	}
	ref := string(key)
	return s.archiveID.Set(txn, idKey, &ref)
}

func (s *Store) putActive(txn *badger.Txn, userID string, active []domain.ActiveTasting) error {
	if active == nil {
		active = []domain.ActiveTasting{}
	}
	return s.active.Set(txn, s.active.Key(userID), &active)
}

// RestoreOwner implements store.Store.
func (s *Store) RestoreOwner(ctx context.Context, userID string, data *store.OwnerData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if userID == "" {
		return store.ErrInvalidInput
	}
	if err := data.CheckOwner(userID); err != nil {
		return err
	}

	for i := range data.Archived {
		if err := s.assignSeq(&data.Archived[i]); err != nil {
			return err
		}
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := s.ensureEmpty(txn, userID); err != nil {
			return err
		}
		for i := range data.Cigars {
			c := &data.Cigars[i]
			key := s.cigars.Key(userID, c.ID)
			exists, err := s.cigars.Exists(txn, key)
			if err != nil {
				return err
			}
			if exists {
				return store.ErrAlreadyExists.WithCause(fmt.Errorf("cigar %s", c.ID))
			}
			if err := s.cigars.Set(txn, key, c); err != nil {
				return err
			}
		}
		for i := range data.Archived {
			if err := s.putArchived(txn, &data.Archived[i]); err != nil {
				return err
			}
		}
		if len(data.Active) == 0 {
			return nil
		}
		return s.putActive(txn, userID, data.Active)
	})
	if err != nil {
		for i := range data.Archived {
			data.Archived[i].Seq = 0
		}
		return err
	}

	s.logger.Info("owner data restored",
		"user_id", userID,
		"cigars", len(data.Cigars),
		"archived", len(data.Archived),
		"active", len(data.Active))
	return nil
}

func (s *Store) ensureEmpty(txn *badger.Txn, userID string) error {
	if s.cigars.Any(txn, s.cigars.Key(userID, "")) || s.archive.Any(txn, s.archive.Key(userID, "")) {
		return store.ErrNotEmpty
	}
	snap, err := s.active.Get(txn, s.active.Key(userID))
	if store.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(*snap) > 0 {
		return store.ErrNotEmpty
	}
	return nil
}
