package backup

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/humidorapp/humidor-server/internal/backup/stream"
	"github.com/humidorapp/humidor-server/internal/domain"
	"github.com/humidorapp/humidor-server/internal/store"
)

// Service exports and restores per-user data.
type Service struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a backup service over s.
func NewService(s store.Store, logger *slog.Logger) *Service {
	return &Service{store: s, logger: logger, now: time.Now}
}

// Export writes userID's inventory, archive and active snapshot to w as a
// zip archive. The archive is written in Seq order so a restore reproduces
// archival order.
func (s *Service) Export(ctx context.Context, userID string, w io.Writer) (*Manifest, error) {
	cigars, err := s.store.ListCigars(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cigars: %w", err)
	}
	archive, err := s.store.ListArchived(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list archive: %w", err)
	}
	active, err := s.store.LoadActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load active: %w", err)
	}

	zw := zip.NewWriter(w)

	m := &Manifest{
		Version:   FormatVersion,
		CreatedAt: s.now().UTC(),
		UserID:    userID,
		Driver:    s.store.Driver(),
	}
	if m.Counts.Cigars, err = writeAll(zw, cigarsPath, cigars); err != nil {
		return nil, err
	}
	if m.Counts.Archived, err = writeAll(zw, archivePath, archive); err != nil {
		return nil, err
	}
	if m.Counts.Active, err = writeAll(zw, activePath, active); err != nil {
		return nil, err
	}

	mw, err := zw.Create(manifestPath)
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(mw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finish archive: %w", err)
	}

	s.logger.Info("Backup written",
		"user_id", userID,
		"cigars", m.Counts.Cigars,
		"archived", m.Counts.Archived,
		"active", m.Counts.Active,
	)
	return m, nil
}

func writeAll[T any](zw *zip.Writer, path string, items []T) (int, error) {
	w, err := stream.NewWriter(zw, path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	for i := range items {
		if err := w.Write(&items[i]); err != nil {
			return 0, fmt.Errorf("write %s: %w", path, err)
		}
	}
	return w.Count(), nil
}

// Restore reads an archive produced by Export and writes it for the
// manifest's user, or opts.UserID when set. The target must hold no data
// for that user. Everything is written in one store transaction, so a
// failed restore leaves the user empty and can be retried. Record IDs are
// kept; archive Seq values are reassigned by the target store in the
// original order.
func (s *Service) Restore(ctx context.Context, r io.ReaderAt, size int64, opts RestoreOptions) (*Manifest, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptedBackup, err)
	}

	m, err := readManifest(zr)
	if err != nil {
		return nil, err
	}

	cigars, err := readAll[domain.Cigar](zr, cigarsPath)
	if err != nil {
		return nil, err
	}
	archive, err := readAll[domain.ArchivedTasting](zr, archivePath)
	if err != nil {
		return nil, err
	}
	active, err := readAll[domain.ActiveTasting](zr, activePath)
	if err != nil {
		return nil, err
	}

	got := EntityCounts{Cigars: len(cigars), Archived: len(archive), Active: len(active)}
	if got != m.Counts {
		return nil, fmt.Errorf("%w: manifest counts %+v, archive holds %+v", ErrCorruptedBackup, m.Counts, got)
	}

	userID := m.UserID
	if opts.UserID != "" {
		userID = opts.UserID
	}
	if err := s.ensureEmpty(ctx, userID); err != nil {
		return nil, err
	}

	if opts.DryRun {
		return m, nil
	}

	for i := range cigars {
		cigars[i].UserID = userID
	}
	for i := range archive {
		archive[i].UserID = userID
		archive[i].Seq = 0
	}
	for i := range active {
		active[i].UserID = userID
	}

	data := &store.OwnerData{Cigars: cigars, Archived: archive, Active: active}
	if err := s.store.RestoreOwner(ctx, userID, data); err != nil {
		if errors.Is(err, store.ErrNotEmpty) {
			return nil, fmt.Errorf("%w: user %s", ErrTargetNotEmpty, userID)
		}
		return nil, fmt.Errorf("restore user %s: %w", userID, err)
	}

	s.logger.Info("Backup restored",
		"user_id", userID,
		"source_user_id", m.UserID,
		"source_driver", m.Driver,
		"target_driver", s.store.Driver(),
	)
	return m, nil
}

func (s *Service) ensureEmpty(ctx context.Context, userID string) error {
	cigars, err := s.store.ListCigars(ctx, userID)
	if err != nil {
		return err
	}
	archive, err := s.store.ListArchived(ctx, userID)
	if err != nil {
		return err
	}
	active, err := s.store.LoadActive(ctx, userID)
	if err != nil {
		return err
	}
	if len(cigars)+len(archive)+len(active) > 0 {
		return fmt.Errorf("%w: user %s has %d cigars, %d archived and %d active tastings",
			ErrTargetNotEmpty, userID, len(cigars), len(archive), len(active))
	}
	return nil
}

func readManifest(zr *zip.Reader) (*Manifest, error) {
	rc, err := stream.OpenFile(zr, manifestPath)
	if err != nil {
		return nil, ErrInvalidManifest
	}
	defer rc.Close()

	var m Manifest
	if err := json.NewDecoder(rc).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if m.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %q", ErrVersionMismatch, m.Version)
	}
	if m.UserID == "" {
		return nil, fmt.Errorf("%w: no user", ErrInvalidManifest)
	}
	return &m, nil
}

func readAll[T any](zr *zip.Reader, path string) ([]T, error) {
	rc, err := stream.OpenFile(zr, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptedBackup, path, err)
	}
	items, err := stream.Collect[T](rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptedBackup, path, err)
	}
	return items, nil
}
