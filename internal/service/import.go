package service

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/humidorapp/humidor-server/internal/domain"
	domainerrors "github.com/humidorapp/humidor-server/internal/errors"
	"github.com/humidorapp/humidor-server/internal/id"
	"github.com/humidorapp/humidor-server/internal/store"
	"github.com/humidorapp/humidor-server/internal/validation"
)

// BrowserExport is the localStorage dump of the single-page app.
type BrowserExport struct {
	Cigars          []browserCigar   `json:"cigars"`
	Completed       []browserSession `json:"tastingSessions"`
	CurrentSessions []browserSession `json:"currentTastingSessions"`
}

type browserCigar struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Brand        string  `json:"brand"`
	Origin       string  `json:"origin"`
	Size         string  `json:"size"`
	Wrapper      string  `json:"wrapper"`
	Strength     int     `json:"strength"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	PurchaseDate string  `json:"purchaseDate"`
	Notes        string  `json:"notes"`
}

type browserSession struct {
	ID          string   `json:"id"`
	CigarID     string   `json:"cigarId"`
	CigarName   string   `json:"cigarName"`
	CigarBrand  string   `json:"cigarBrand"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	Rating      int      `json:"rating"`
	Notes       string   `json:"notes"`
	Flavors     []string `json:"flavors"`
	BurnQuality *int     `json:"burnQuality"`
	DrawQuality *int     `json:"drawQuality"`
	AshQuality  *int     `json:"ashQuality"`
	Environment string   `json:"environment"`
	Pairing     string   `json:"pairing"`
}

// ImportResult counts what an import wrote and what it skipped.
type ImportResult struct {
	Cigars   int      `json:"cigars"`
	Archived int      `json:"archived"`
	Active   int      `json:"active"`
	Skipped  []string `json:"skipped,omitempty"`
}

// ImportService loads a browser export into the store for one user.
type ImportService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewImportService creates a new import service.
func NewImportService(s store.Store, v *validation.Validator, logger *slog.Logger) *ImportService {
	return &ImportService{store: s, validator: v, logger: logger}
}

// DecodeBrowserExport parses an export document.
func DecodeBrowserExport(r io.Reader) (*BrowserExport, error) {
	var exp BrowserExport
	if err := json.NewDecoder(r).Decode(&exp); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "decode browser export")
	}
	return &exp, nil
}

// Import writes exp for userID, who must not hold any data yet (CONFLICT
// otherwise). Every record gets a fresh id; session references to imported
// cigars are rewritten. Completed sessions are archived in end-time order.
// Records that fail validation are skipped and reported. All records are
// written in one store transaction, so a failed import writes nothing and a
// repeated one is refused instead of duplicating data.
func (s *ImportService) Import(ctx context.Context, userID string, exp *BrowserExport) (*ImportResult, error) {
	res := &ImportResult{}
	data := &store.OwnerData{}
	cigarIDs := make(map[string]string, len(exp.Cigars))

	for _, bc := range exp.Cigars {
		c := domain.Cigar{
			Name:     strings.TrimSpace(bc.Name),
			Brand:    strings.TrimSpace(bc.Brand),
			Origin:   bc.Origin,
			Size:     bc.Size,
			Wrapper:  bc.Wrapper,
			Strength: bc.Strength,
			Price:    bc.Price,
			Quantity: bc.Quantity,
			Notes:    bc.Notes,
		}
		if d, ok := parseBrowserTime(bc.PurchaseDate); ok {
			c.PurchaseDate = &d
		}
		if err := s.validator.Validate(c); err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("cigar %s: %v", bc.ID, err))
			continue
		}

		newID, err := id.Generate(id.PrefixCigar)
		if err != nil {
			return res, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate cigar id")
		}
		now := time.Now()
		c.ID, c.UserID, c.CreatedAt, c.UpdatedAt = newID, userID, now, now

		data.Cigars = append(data.Cigars, c)
		cigarIDs[bc.ID] = newID
	}

	data.Archived = make([]domain.ArchivedTasting, 0, len(exp.Completed))
	for _, bs := range exp.Completed {
		start, okStart := parseBrowserTime(bs.StartTime)
		end, okEnd := parseBrowserTime(bs.EndTime)
		if !okStart || !okEnd {
			res.Skipped = append(res.Skipped, fmt.Sprintf("tasting %s: missing start or end time", bs.ID))
			continue
		}
		review := domain.Review{
			Rating:      bs.Rating,
			BurnQuality: bs.BurnQuality,
			DrawQuality: bs.DrawQuality,
			AshQuality:  bs.AshQuality,
			Flavors:     bs.Flavors,
			Notes:       bs.Notes,
			Environment: bs.Environment,
			Pairing:     bs.Pairing,
		}
		if err := s.validator.ValidateReview(review, domain.ReviewMinimal); err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("tasting %s: %v", bs.ID, err))
			continue
		}

		a, err := s.activeFrom(userID, bs, start, cigarIDs)
		if err != nil {
			return res, err
		}
		data.Archived = append(data.Archived, *a.Complete(end, review))
	}
	slices.SortStableFunc(data.Archived, func(a, b domain.ArchivedTasting) int {
		return a.EndTime.Compare(b.EndTime)
	})

	for _, bs := range exp.CurrentSessions {
		start, ok := parseBrowserTime(bs.StartTime)
		if !ok {
			res.Skipped = append(res.Skipped, fmt.Sprintf("active tasting %s: missing start time", bs.ID))
			continue
		}
		a, err := s.activeFrom(userID, bs, start, cigarIDs)
		if err != nil {
			return res, err
		}
		data.Active = append(data.Active, *a)
	}
	slices.SortStableFunc(data.Active, func(a, b domain.ActiveTasting) int {
		return cmp.Compare(a.StartTime.UnixNano(), b.StartTime.UnixNano())
	})

	if data.Empty() {
		return res, domainerrors.Validationf("browser export holds no importable records")
	}
	if err := s.store.RestoreOwner(ctx, userID, data); err != nil {
		return res, storeErr(err, "import browser export")
	}
	res.Cigars, res.Archived, res.Active = len(data.Cigars), len(data.Archived), len(data.Active)

	s.logger.Info("browser export imported",
		"user_id", userID,
		"cigars", res.Cigars,
		"archived", res.Archived,
		"active", res.Active,
		"skipped", len(res.Skipped))
	return res, nil
}

func (s *ImportService) activeFrom(userID string, bs browserSession, start time.Time, cigarIDs map[string]string) (*domain.ActiveTasting, error) {
	tastingID, err := id.Generate(id.PrefixTasting)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate tasting id")
	}
	cigarID := cigarIDs[bs.CigarID]
	if cigarID == "" {
		cigarID = bs.CigarID
	}
	return &domain.ActiveTasting{
		ID:         tastingID,
		UserID:     userID,
		CigarID:    cigarID,
		CigarName:  bs.CigarName,
		CigarBrand: bs.CigarBrand,
		StartTime:  start,
	}, nil
}

// parseBrowserTime accepts ISO timestamps and plain dates.
func parseBrowserTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
