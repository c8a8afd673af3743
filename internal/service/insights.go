package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/humidorapp/humidor-server/internal/domain"
	domainerrors "github.com/humidorapp/humidor-server/internal/errors"
	"github.com/humidorapp/humidor-server/internal/history"
	"github.com/humidorapp/humidor-server/internal/recommend"
	"github.com/humidorapp/humidor-server/internal/stats"
	"github.com/humidorapp/humidor-server/internal/store"
)

// StatsService loads a user's data and derives the dashboard, the history
// view and flavor-based recommendations from it.
type StatsService struct {
	store       store.Store
	recommender recommend.Recommender
	logger      *slog.Logger
	now         func() time.Time
}

// NewStatsService creates a new stats service. A nil recommender uses
// recommend.FlavorOverlap.
func NewStatsService(s store.Store, r recommend.Recommender, logger *slog.Logger) *StatsService {
	if r == nil {
		r = recommend.FlavorOverlap{}
	}
	return &StatsService{
		store:       s,
		recommender: r,
		logger:      logger,
		now:         time.Now,
	}
}

// Overview computes the dashboard summary.
func (s *StatsService) Overview(ctx context.Context, userID string) (*stats.Overview, error) {
	cigars, err := s.store.ListCigars(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "list cigars")
	}
	archive, err := s.store.ListArchived(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "list archive")
	}
	active, err := s.store.LoadActive(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "load active tastings")
	}

	o := stats.Summarize(cigars, archive, active, s.now())
	s.logger.Debug("computed overview",
		"user_id", userID,
		"cigars", o.TotalCigars,
		"sessions", o.TotalSessions)
	return &o, nil
}

// History returns archived tastings matching q.
func (s *StatsService) History(ctx context.Context, userID string, q history.Query) ([]domain.ArchivedTasting, error) {
	if q.Rating < 0 || q.Rating > 5 {
		return nil, domainerrors.ValidationWithDetails("invalid history query",
			map[string]string{"rating": "must be between 1 and 5"})
	}

	archive, err := s.store.ListArchived(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "list archive")
	}
	return history.Apply(archive, q), nil
}

// Recommend ranks the owner's available cigars against the selected flavors.
func (s *StatsService) Recommend(ctx context.Context, userID string, flavors []string) ([]recommend.RankedCigar, error) {
	details := make(map[string]string)
	for i, f := range flavors {
		if !domain.IsFlavor(f) {
			details[fmt.Sprintf("flavors[%d]", i)] = fmt.Sprintf("%q is not a known flavor", f)
		}
	}
	if len(details) > 0 {
		return nil, domainerrors.ValidationWithDetails("invalid flavors", details)
	}

	cigars, err := s.store.ListCigars(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "list cigars")
	}
	archive, err := s.store.ListArchived(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "list archive")
	}
	return s.recommender.Recommend(flavors, archive, cigars), nil
}
