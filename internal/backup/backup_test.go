package backup

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humidorapp/humidor-server/internal/domain"
	"github.com/humidorapp/humidor-server/internal/store"
	"github.com/humidorapp/humidor-server/internal/store/badger"
	"github.com/humidorapp/humidor-server/internal/store/sqlite"
)

var testLogger = slog.New(slog.DiscardHandler)

func seed(t *testing.T, s store.Store, userID string) {
	t.Helper()
	ctx := context.Background()
	start := time.Date(2026, 2, 1, 20, 0, 0, 0, time.UTC)

	c := &domain.Cigar{ID: "cig-1", UserID: userID, Name: "Hoyo Epicure", Brand: "Hoyo de Monterrey", Strength: 3, Quantity: 4, CreatedAt: start, UpdatedAt: start}
	require.NoError(t, s.CreateCigar(ctx, c))

	for i, rating := range []int{3, 5} {
		a := domain.ActiveTasting{ID: "tst-" + string(rune('a'+i)), UserID: userID, CigarID: c.ID, CigarName: c.Name, CigarBrand: c.Brand, StartTime: start.Add(time.Duration(i) * 24 * time.Hour)}
		rec := a.Complete(a.StartTime.Add(50*time.Minute), domain.Review{Rating: rating, Flavors: []string{"Cedro"}})
		require.NoError(t, s.AppendArchived(ctx, rec))
	}

	require.NoError(t, s.SaveActive(ctx, userID, []domain.ActiveTasting{
		{ID: "tst-live", UserID: userID, CigarID: c.ID, CigarName: c.Name, CigarBrand: c.Brand, StartTime: start.Add(72 * time.Hour)},
	}))
}

func openBadger(t *testing.T) *badger.Store {
	t.Helper()
	s, err := badger.OpenInMemory(testLogger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestExportRestore_AcrossDrivers(t *testing.T) {
	ctx := context.Background()
	src := openBadger(t)
	seed(t, src, "u1")

	var buf bytes.Buffer
	m, err := NewService(src, testLogger).Export(ctx, "u1", &buf)
	require.NoError(t, err)
	assert.Equal(t, EntityCounts{Cigars: 1, Archived: 2, Active: 1}, m.Counts)
	assert.Equal(t, "badger", m.Driver)

	dst, err := sqlite.Open(filepath.Join(t.TempDir(), "restore.db"), testLogger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dst.Close() })

	_, err = NewService(dst, testLogger).Restore(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()), RestoreOptions{})
	require.NoError(t, err)

	cigars, err := dst.ListCigars(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cigars, 1)
	assert.Equal(t, "cig-1", cigars[0].ID)

	archive, err := dst.ListArchived(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, archive, 2)
	assert.Equal(t, []int{3, 5}, []int{archive[0].Rating, archive[1].Rating})
	assert.Less(t, archive[0].Seq, archive[1].Seq)

	active, err := dst.LoadActive(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "tst-live", active[0].ID)
}

func TestRestore_RejectsNonEmptyTarget(t *testing.T) {
	ctx := context.Background()
	src := openBadger(t)
	seed(t, src, "u1")

	var buf bytes.Buffer
	_, err := NewService(src, testLogger).Export(ctx, "u1", &buf)
	require.NoError(t, err)

	// Restoring into the source itself finds u1's data already there.
	_, err = NewService(src, testLogger).Restore(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()), RestoreOptions{})
	require.ErrorIs(t, err, ErrTargetNotEmpty)
}

func TestRestore_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	src := openBadger(t)
	seed(t, src, "u1")

	var buf bytes.Buffer
	_, err := NewService(src, testLogger).Export(ctx, "u1", &buf)
	require.NoError(t, err)

	dst := openBadger(t)
	m, err := NewService(dst, testLogger).Restore(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()), RestoreOptions{UserID: "u9", DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Counts.Archived)

	cigars, err := dst.ListCigars(ctx, "u9")
	require.NoError(t, err)
	assert.Empty(t, cigars)
}

func buildArchive(t *testing.T, m *Manifest, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if m != nil {
		w, err := zw.Create(manifestPath)
		require.NoError(t, err)
		require.NoError(t, json.NewEncoder(w).Encode(m))
	}
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func jsonLines(t *testing.T, items ...any) string {
	t.Helper()
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	for _, it := range items {
		require.NoError(t, enc.Encode(it))
	}
	return b.String()
}

func TestRestore_IntoSecondUserOnSameStore(t *testing.T) {
	drivers := map[string]func(t *testing.T) store.Store{
		"badger": func(t *testing.T) store.Store { return openBadger(t) },
		"sqlite": func(t *testing.T) store.Store {
			s, err := sqlite.Open(filepath.Join(t.TempDir(), "same.db"), testLogger)
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
	for name, open := range drivers {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			seed(t, s, "u1")
			svc := NewService(s, testLogger)

			var buf bytes.Buffer
			_, err := svc.Export(ctx, "u1", &buf)
			require.NoError(t, err)

			_, err = svc.Restore(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()), RestoreOptions{UserID: "u2"})
			require.NoError(t, err)

			for _, user := range []string{"u1", "u2"} {
				cigars, err := s.ListCigars(ctx, user)
				require.NoError(t, err)
				require.Len(t, cigars, 1, user)
				assert.Equal(t, "cig-1", cigars[0].ID)
				assert.Equal(t, user, cigars[0].UserID)

				archive, err := s.ListArchived(ctx, user)
				require.NoError(t, err)
				assert.Len(t, archive, 2, user)

				active, err := s.LoadActive(ctx, user)
				require.NoError(t, err)
				assert.Len(t, active, 1, user)
			}
		})
	}
}

func TestRestore_FailureLeavesTargetEmpty(t *testing.T) {
	ctx := context.Background()
	dst := openBadger(t)
	svc := NewService(dst, testLogger)

	start := time.Date(2026, 2, 1, 20, 0, 0, 0, time.UTC)
	cigar := domain.Cigar{ID: "cig-1", UserID: "u1", Name: "Partagás D4", Brand: "Partagás", Strength: 4, Quantity: 2, CreatedAt: start, UpdatedAt: start}
	a := domain.ActiveTasting{ID: "tst-a", UserID: "u1", CigarID: cigar.ID, CigarName: cigar.Name, CigarBrand: cigar.Brand, StartTime: start}
	rec := a.Complete(start.Add(40*time.Minute), domain.Review{Rating: 4})

	manifest := &Manifest{Version: FormatVersion, UserID: "u1", Counts: EntityCounts{Cigars: 1, Archived: 2}}
	broken := buildArchive(t, manifest, map[string]string{
		cigarsPath:  jsonLines(t, cigar),
		archivePath: jsonLines(t, rec, rec),
		activePath:  "",
	})

	_, err := svc.Restore(ctx, bytes.NewReader(broken), int64(len(broken)), RestoreOptions{})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	cigars, err := dst.ListCigars(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cigars, "cigars written before the failing record must be rolled back")
	archive, err := dst.ListArchived(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, archive)

	// The user is still empty, so a corrected archive restores.
	manifest.Counts.Archived = 1
	fixed := buildArchive(t, manifest, map[string]string{
		cigarsPath:  jsonLines(t, cigar),
		archivePath: jsonLines(t, rec),
		activePath:  "",
	})
	_, err = svc.Restore(ctx, bytes.NewReader(fixed), int64(len(fixed)), RestoreOptions{})
	require.NoError(t, err)

	archive, err = dst.ListArchived(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, archive, 1)
}

func TestRestore_InvalidArchives(t *testing.T) {
	ctx := context.Background()
	dst := openBadger(t)
	svc := NewService(dst, testLogger)

	build := func(m *Manifest, files map[string]string) []byte { return buildArchive(t, m, files) }
	restore := func(b []byte) error {
		_, err := svc.Restore(ctx, bytes.NewReader(b), int64(len(b)), RestoreOptions{})
		return err
	}

	empty := map[string]string{cigarsPath: "", archivePath: "", activePath: ""}

	assert.ErrorIs(t, restore([]byte("not a zip")), ErrCorruptedBackup)
	assert.ErrorIs(t, restore(build(nil, empty)), ErrInvalidManifest)
	assert.ErrorIs(t, restore(build(&Manifest{Version: "0", UserID: "u1"}, empty)), ErrVersionMismatch)
	assert.ErrorIs(t, restore(build(&Manifest{Version: FormatVersion, UserID: "u1", Counts: EntityCounts{Cigars: 2}}, empty)), ErrCorruptedBackup)
	assert.ErrorIs(t, restore(build(&Manifest{Version: FormatVersion, UserID: "u1"}, map[string]string{cigarsPath: ""})), ErrCorruptedBackup)
}
