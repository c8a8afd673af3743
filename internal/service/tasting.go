package service

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/humidorapp/humidor-server/internal/domain"
	domainerrors "github.com/humidorapp/humidor-server/internal/errors"
	"github.com/humidorapp/humidor-server/internal/id"
	"github.com/humidorapp/humidor-server/internal/metrics"
	"github.com/humidorapp/humidor-server/internal/sse"
	"github.com/humidorapp/humidor-server/internal/store"
	"github.com/humidorapp/humidor-server/internal/validation"
)

// TastingPolicy decides whether one cigar may have several tastings in progress.
type TastingPolicy string

const (
	// PolicyOnePerCigar rejects a start while the cigar already has a tasting in progress.
	PolicyOnePerCigar TastingPolicy = "one-per-cigar"
	// PolicyConcurrent places no limit.
	PolicyConcurrent TastingPolicy = "concurrent"
)

// Transition names used for metrics and logs.
const (
	transitionStart  = "start"
	transitionCancel = "cancel"
	transitionFinish = "finish"
)

// TastingOptions configures a TastingService.
type TastingOptions struct {
	Policy     TastingPolicy
	ReviewMode domain.ReviewMode
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// TastingService runs the tasting lifecycle: Available -> InProgress -> Archived.
// Transitions for one owner are serialized; a failed transition leaves both
// the active snapshot and the archive as they were.
type TastingService struct {
	store     store.Store
	events    store.EventEmitter
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger

	policy     TastingPolicy
	reviewMode domain.ReviewMode
	now        func() time.Time
	locks      *ownerLocks
}

// NewTastingService creates a new tasting service.
func NewTastingService(
	s store.Store,
	events store.EventEmitter,
	v *validation.Validator,
	m *metrics.Metrics,
	opts TastingOptions,
	logger *slog.Logger,
) *TastingService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Policy == "" {
		opts.Policy = PolicyOnePerCigar
	}
	if opts.ReviewMode == "" {
		opts.ReviewMode = domain.ReviewMinimal
	}
	if events == nil {
		events = store.NoopEmitter{}
	}

	return &TastingService{
		store:      s,
		events:     events,
		validator:  v,
		metrics:    m,
		logger:     logger,
		policy:     opts.Policy,
		reviewMode: opts.ReviewMode,
		now:        opts.Clock,
		locks:      newOwnerLocks(),
	}
}

// ReviewMode returns the configured review mode.
func (s *TastingService) ReviewMode() domain.ReviewMode {
	return s.reviewMode
}

// Now reports the service clock.
func (s *TastingService) Now() time.Time {
	return s.now()
}

// Active returns the owner's in-progress tastings in start order.
func (s *TastingService) Active(ctx context.Context, userID string) ([]domain.ActiveTasting, error) {
	active, err := s.store.LoadActive(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "load active tastings")
	}
	return active, nil
}

// Start begins a tasting of cigarID. The cigar's quantity is not changed.
func (s *TastingService) Start(ctx context.Context, userID, cigarID string) (_ *domain.ActiveTasting, err error) {
	defer func() { s.metrics.ObserveTransition(transitionStart, err) }()

	unlock := s.locks.lock(userID)
	defer unlock()

	cigar, err := s.store.GetCigar(ctx, userID, cigarID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domainerrors.NotFoundf("cigar %s not found", cigarID)
		}
		return nil, storeErr(err, "get cigar")
	}
	if !cigar.Available() {
		return nil, domainerrors.Validationf("cigar %s is out of stock", cigarID)
	}

	active, err := s.store.LoadActive(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "load active tastings")
	}

	if s.policy == PolicyOnePerCigar && slices.ContainsFunc(active, func(a domain.ActiveTasting) bool {
		return a.CigarID == cigarID
	}) {
		return nil, domainerrors.Conflictf("cigar %s already has a tasting in progress", cigarID)
	}

	tastingID, err := id.Generate(id.PrefixTasting)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate tasting id")
	}

	tasting := domain.ActiveTasting{
		ID:         tastingID,
		UserID:     userID,
		CigarID:    cigar.ID,
		CigarName:  cigar.Name,
		CigarBrand: cigar.Brand,
		StartTime:  s.now(),
	}

	next := append(slices.Clone(active), tasting)
	if err := s.store.SaveActive(ctx, userID, next); err != nil {
		s.logger.Error("failed to save active tastings",
			"user_id", userID,
			"cigar_id", cigarID,
			"error", err)
		return nil, storeErr(err, "save active tastings")
	}

	s.logger.Info("tasting started",
		"user_id", userID,
		"tasting_id", tasting.ID,
		"cigar_id", cigar.ID,
		"in_progress", len(next))

	s.events.Emit(sse.NewTastingStartedEvent(&tasting))
	return &tasting, nil
}

// Cancel discards an in-progress tasting. Nothing is archived.
func (s *TastingService) Cancel(ctx context.Context, userID, tastingID string) (err error) {
	defer func() { s.metrics.ObserveTransition(transitionCancel, err) }()

	unlock := s.locks.lock(userID)
	defer unlock()

	active, err := s.store.LoadActive(ctx, userID)
	if err != nil {
		return storeErr(err, "load active tastings")
	}

	idx := indexOf(active, tastingID)
	if idx < 0 {
		return domainerrors.NotFoundf("tasting %s is not in progress", tastingID)
	}
	cancelled := active[idx]

	remaining := slices.Delete(slices.Clone(active), idx, idx+1)
	if err := s.store.SaveActive(ctx, userID, remaining); err != nil {
		s.logger.Error("failed to save active tastings",
			"user_id", userID,
			"tasting_id", tastingID,
			"error", err)
		return storeErr(err, "save active tastings")
	}

	s.logger.Info("tasting cancelled",
		"user_id", userID,
		"tasting_id", tastingID,
		"cigar_id", cancelled.CigarID)

	s.events.Emit(sse.NewTastingCancelledEvent(&cancelled))
	return nil
}

// Finish validates review, then archives the tasting and removes it from
// the in-progress set in a single store transaction.
func (s *TastingService) Finish(ctx context.Context, userID, tastingID string, review domain.Review) (_ *domain.ArchivedTasting, err error) {
	defer func() { s.metrics.ObserveTransition(transitionFinish, err) }()

	if err := s.validator.ValidateReview(review, s.reviewMode); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	active, err := s.store.LoadActive(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "load active tastings")
	}

	idx := indexOf(active, tastingID)
	if idx < 0 {
		return nil, domainerrors.NotFoundf("tasting %s is not in progress", tastingID)
	}

	rec := active[idx].Complete(s.now(), review)
	remaining := slices.Delete(slices.Clone(active), idx, idx+1)

	if err := s.store.CompleteTasting(ctx, rec, remaining); err != nil {
		s.logger.Error("failed to archive tasting",
			"user_id", userID,
			"tasting_id", tastingID,
			"error", err)
		return nil, storeErr(err, "archive tasting")
	}

	s.metrics.ObserveFinished(rec.Duration, rec.Rating)
	s.logger.Info("tasting finished",
		"user_id", userID,
		"tasting_id", rec.ID,
		"cigar_id", rec.CigarID,
		"duration_min", rec.Duration,
		"rating", rec.Rating,
		"seq", rec.Seq)

	s.events.Emit(sse.NewTastingFinishedEvent(rec))
	return rec, nil
}

func indexOf(active []domain.ActiveTasting, tastingID string) int {
	return slices.IndexFunc(active, func(a domain.ActiveTasting) bool {
		return a.ID == tastingID
	})
}
