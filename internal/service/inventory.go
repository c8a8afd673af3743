package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/humidorapp/humidor-server/internal/domain"
	domainerrors "github.com/humidorapp/humidor-server/internal/errors"
	"github.com/humidorapp/humidor-server/internal/history"
	"github.com/humidorapp/humidor-server/internal/id"
	"github.com/humidorapp/humidor-server/internal/sse"
	"github.com/humidorapp/humidor-server/internal/stats"
	"github.com/humidorapp/humidor-server/internal/store"
	"github.com/humidorapp/humidor-server/internal/validation"
)

// InventoryService manages a user's cigars.
type InventoryService struct {
	store     store.Store
	events    store.EventEmitter
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(s store.Store, events store.EventEmitter, v *validation.Validator, logger *slog.Logger) *InventoryService {
	if events == nil {
		events = store.NoopEmitter{}
	}
	return &InventoryService{
		store:     s,
		events:    events,
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns the owner's cigars, filtered by search when it is not blank.
func (s *InventoryService) List(ctx context.Context, userID, search string) ([]domain.Cigar, error) {
	cigars, err := s.store.ListCigars(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "list cigars")
	}
	return history.SearchCigars(cigars, search), nil
}

// Available returns cigars with quantity > 0. With excludeActive, cigars
// that already have a tasting in progress are left out too.
func (s *InventoryService) Available(ctx context.Context, userID string, excludeActive bool) ([]domain.Cigar, error) {
	cigars, err := s.store.ListCigars(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "list cigars")
	}

	var active []domain.ActiveTasting
	if excludeActive {
		if active, err = s.store.LoadActive(ctx, userID); err != nil {
			return nil, storeErr(err, "load active tastings")
		}
	}
	return stats.AvailableCigars(cigars, active, excludeActive), nil
}

// Get returns one cigar.
func (s *InventoryService) Get(ctx context.Context, userID, cigarID string) (*domain.Cigar, error) {
	c, err := s.store.GetCigar(ctx, userID, cigarID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domainerrors.NotFoundf("cigar %s not found", cigarID)
		}
		return nil, storeErr(err, "get cigar")
	}
	return c, nil
}

// Create validates c, assigns its id, owner and timestamps, and stores it.
func (s *InventoryService) Create(ctx context.Context, userID string, c domain.Cigar) (*domain.Cigar, error) {
	if err := s.validator.Validate(c); err != nil {
		return nil, err
	}

	cigarID, err := id.Generate(id.PrefixCigar)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate cigar id")
	}

	now := s.now()
	c.ID = cigarID
	c.UserID = userID
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.store.CreateCigar(ctx, &c); err != nil {
		return nil, storeErr(err, "create cigar")
	}

	s.logger.Info("cigar created",
		"user_id", userID,
		"cigar_id", c.ID,
		"name", c.Name,
		"brand", c.Brand,
		"quantity", c.Quantity)

	s.events.Emit(sse.NewCigarCreatedEvent(&c))
	return &c, nil
}

// Update applies patch to a stored cigar.
func (s *InventoryService) Update(ctx context.Context, userID, cigarID string, patch domain.CigarPatch) (*domain.Cigar, error) {
	c, err := s.Get(ctx, userID, cigarID)
	if err != nil {
		return nil, err
	}

	patch.Apply(c)
	if err := s.validator.Validate(*c); err != nil {
		return nil, err
	}
	c.UpdatedAt = s.now()

	if err := s.store.UpdateCigar(ctx, c); err != nil {
		if store.IsNotFound(err) {
			return nil, domainerrors.NotFoundf("cigar %s not found", cigarID)
		}
		return nil, storeErr(err, "update cigar")
	}

	s.logger.Info("cigar updated",
		"user_id", userID,
		"cigar_id", c.ID,
		"quantity", c.Quantity)

	s.events.Emit(sse.NewCigarUpdatedEvent(c))
	return c, nil
}

// Delete removes a cigar. Archived and in-progress tastings keep their
// name and brand snapshot.
func (s *InventoryService) Delete(ctx context.Context, userID, cigarID string) error {
	if err := s.store.DeleteCigar(ctx, userID, cigarID); err != nil {
		if store.IsNotFound(err) {
			return domainerrors.NotFoundf("cigar %s not found", cigarID)
		}
		return storeErr(err, "delete cigar")
	}

	s.logger.Info("cigar deleted", "user_id", userID, "cigar_id", cigarID)
	s.events.Emit(sse.NewCigarDeletedEvent(userID, cigarID, s.now()))
	return nil
}
