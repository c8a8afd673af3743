// Package store defines the persistence contracts for cigars, archived
// tastings and the active-tasting slot. Implementations live in the badger,
// sqlite and postgres subpackages; storetest holds their shared suite.
package store

import (
	"context"
	"fmt"

	"github.com/humidorapp/humidor-server/internal/domain"
)

// Inventory persists a user's cigars.
type Inventory interface {
	// ListCigars returns the owner's cigars ordered by creation time.
	ListCigars(ctx context.Context, userID string) ([]domain.Cigar, error)
	GetCigar(ctx context.Context, userID, id string) (*domain.Cigar, error)
	// CreateCigar fails with ErrAlreadyExists when the id is taken.
	CreateCigar(ctx context.Context, c *domain.Cigar) error
	// UpdateCigar replaces the stored record and fails with ErrNotFound if absent.
	UpdateCigar(ctx context.Context, c *domain.Cigar) error
	DeleteCigar(ctx context.Context, userID, id string) error
}

// Archive is the append-only log of finished tastings.
type Archive interface {
	// ListArchived returns the owner's records in archival order (ascending Seq).
	ListArchived(ctx context.Context, userID string) ([]domain.ArchivedTasting, error)
	// AppendArchived assigns rec.Seq and stores rec. A duplicate id fails
	// with ErrAlreadyExists.
	AppendArchived(ctx context.Context, rec *domain.ArchivedTasting) error
}

// ActiveSlot holds the owner's in-progress tastings as a single snapshot
// that is always written whole.
type ActiveSlot interface {
	// LoadActive returns the snapshot, or an empty slice if none was saved.
	LoadActive(ctx context.Context, userID string) ([]domain.ActiveTasting, error)
	SaveActive(ctx context.Context, userID string, active []domain.ActiveTasting) error
}

// Store is the full persistence surface used by the services.
type Store interface {
	Inventory
	Archive
	ActiveSlot

	// CompleteTasting appends rec to the archive and replaces the owner's
	// active snapshot with remaining in one transaction. Either both writes
	// land or neither does.
	CompleteTasting(ctx context.Context, rec *domain.ArchivedTasting, remaining []domain.ActiveTasting) error

	// RestoreOwner writes all of data for userID in one transaction. It
	// fails with ErrNotEmpty, writing nothing, when the owner already holds
	// cigars, archived or in-progress tastings. Archived records are
	// appended in slice order and get fresh Seq values.
	RestoreOwner(ctx context.Context, userID string, data *OwnerData) error

	// Driver names the backend, e.g. "badger".
	Driver() string
	Ping(ctx context.Context) error
	Close() error
}

// OwnerData is everything one owner holds.
type OwnerData struct {
	Cigars   []domain.Cigar
	Archived []domain.ArchivedTasting
	Active   []domain.ActiveTasting
}

// Empty reports whether d holds no records.
func (d *OwnerData) Empty() bool {
	return len(d.Cigars)+len(d.Archived)+len(d.Active) == 0
}

// CheckOwner returns ErrInvalidInput unless every record in d belongs to
// userID and has an id.
func (d *OwnerData) CheckOwner(userID string) error {
	for i := range d.Cigars {
		if err := CheckKeys(d.Cigars[i].UserID, d.Cigars[i].ID); err != nil || d.Cigars[i].UserID != userID {
			return ErrInvalidInput.WithCause(fmt.Errorf("cigar %q", d.Cigars[i].ID))
		}
	}
	for i := range d.Archived {
		if err := CheckKeys(d.Archived[i].UserID, d.Archived[i].ID); err != nil || d.Archived[i].UserID != userID {
			return ErrInvalidInput.WithCause(fmt.Errorf("archived tasting %q", d.Archived[i].ID))
		}
	}
	for i := range d.Active {
		if err := CheckKeys(d.Active[i].UserID, d.Active[i].ID); err != nil || d.Active[i].UserID != userID {
			return ErrInvalidInput.WithCause(fmt.Errorf("active tasting %q", d.Active[i].ID))
		}
	}
	return nil
}

// EventEmitter broadcasts change events without depending on the SSE package.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter discards events.
type NoopEmitter struct{}

// Emit implements EventEmitter.
func (NoopEmitter) Emit(any) {}
