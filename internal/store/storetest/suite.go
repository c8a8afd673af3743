// Package storetest is a conformance suite run against every store.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/humidorapp/humidor-server/internal/domain"
	"github.com/humidorapp/humidor-server/internal/id"
	"github.com/humidorapp/humidor-server/internal/store"
)

// Run exercises s. makeStore must return an isolated, empty store; the
// suite closes nothing, so register cleanup in makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("CigarCRUD", func(t *testing.T) { testCigarCRUD(t, makeStore(t)) })
	t.Run("CigarsScopedByOwner", func(t *testing.T) { testOwnerScope(t, makeStore(t)) })
	t.Run("ArchiveOrder", func(t *testing.T) { testArchiveOrder(t, makeStore(t)) })
	t.Run("ArchiveDuplicateID", func(t *testing.T) { testArchiveDuplicate(t, makeStore(t)) })
	t.Run("OwnerPrefixIsolation", func(t *testing.T) { testOwnerPrefix(t, makeStore(t)) })
	t.Run("SameIDsUnderTwoOwners", func(t *testing.T) { testSameIDsTwoOwners(t, makeStore(t)) })
	t.Run("RestoreOwner", func(t *testing.T) { testRestoreOwner(t, makeStore(t)) })
	t.Run("RestoreOwnerRequiresEmptyOwner", func(t *testing.T) { testRestoreOwnerNotEmpty(t, makeStore(t)) })
	t.Run("RestoreOwnerIsAtomic", func(t *testing.T) { testRestoreOwnerAtomic(t, makeStore(t)) })
	t.Run("RejectsMissingKeys", func(t *testing.T) { testMissingKeys(t, makeStore(t)) })
	t.Run("ActiveSlot", func(t *testing.T) { testActiveSlot(t, makeStore(t)) })
	t.Run("CompleteTasting", func(t *testing.T) { testCompleteTasting(t, makeStore(t)) })
	t.Run("CompleteTastingIsAtomic", func(t *testing.T) { testCompleteAtomic(t, makeStore(t)) })
	t.Run("ConcurrentAppends", func(t *testing.T) { testConcurrentAppends(t, makeStore(t)) })
	t.Run("Ping", func(t *testing.T) {
		if err := makeStore(t).Ping(context.Background()); err != nil {
			t.Fatalf("Ping: %v", err)
		}
	})
}

var base = time.Date(2025, 4, 10, 20, 0, 0, 0, time.UTC)

func newUser() string { return id.MustGenerate("user") }

func newCigar(userID, name string, created time.Time) *domain.Cigar {
	bought := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	return &domain.Cigar{
		ID:           id.MustGenerate(id.PrefixCigar),
		UserID:       userID,
		Name:         name,
		Brand:        "Casa Magna",
		Origin:       "Nicarágua",
		Size:         "Robusto",
		Wrapper:      "Maduro",
		Strength:     3,
		Price:        18.5,
		Quantity:     4,
		PurchaseDate: &bought,
		Notes:        "presente",
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func newArchived(userID, name string, rating int) *domain.ArchivedTasting {
	burn := 4
	return &domain.ArchivedTasting{
		ID:          id.MustGenerate(id.PrefixTasting),
		UserID:      userID,
		CigarID:     "cigar-x",
		CigarName:   name,
		CigarBrand:  "Casa Magna",
		StartTime:   base,
		EndTime:     base.Add(45 * time.Minute),
		Duration:    45,
		Rating:      rating,
		BurnQuality: &burn,
		Flavors:     []string{"Café", "Cedro"},
		Notes:       "bom",
		Pairing:     "rum",
	}
}

func testCigarCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()
	user := newUser()

	first := newCigar(user, "Robusto", base)
	second := newCigar(user, "Toro", base.Add(time.Minute))
	for _, c := range []*domain.Cigar{second, first} {
		if err := s.CreateCigar(ctx, c); err != nil {
			t.Fatalf("CreateCigar: %v", err)
		}
	}
	if err := s.CreateCigar(ctx, first); !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("CreateCigar duplicate: got %v, want ErrAlreadyExists", err)
	}

	got, err := s.GetCigar(ctx, user, first.ID)
	if err != nil {
		t.Fatalf("GetCigar: %v", err)
	}
	if got.Name != "Robusto" || got.Origin != "Nicarágua" || got.Quantity != 4 || got.Price != 18.5 {
		t.Errorf("GetCigar: unexpected record %+v", got)
	}
	if got.PurchaseDate == nil || !got.PurchaseDate.Equal(*first.PurchaseDate) {
		t.Errorf("GetCigar: purchase date = %v", got.PurchaseDate)
	}
	if !got.CreatedAt.Equal(base) {
		t.Errorf("GetCigar: created_at = %v, want %v", got.CreatedAt, base)
	}

	list, err := s.ListCigars(ctx, user)
	if err != nil {
		t.Fatalf("ListCigars: %v", err)
	}
	if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatalf("ListCigars: want creation order, got %+v", list)
	}

	got.Quantity = 0
	got.PurchaseDate = nil
	if err := s.UpdateCigar(ctx, got); err != nil {
		t.Fatalf("UpdateCigar: %v", err)
	}
	again, err := s.GetCigar(ctx, user, first.ID)
	if err != nil {
		t.Fatalf("GetCigar after update: %v", err)
	}
	if again.Quantity != 0 || again.PurchaseDate != nil {
		t.Errorf("UpdateCigar not applied: %+v", again)
	}

	missing := newCigar(user, "Ghost", base)
	if err := s.UpdateCigar(ctx, missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateCigar missing: got %v, want ErrNotFound", err)
	}

	if err := s.DeleteCigar(ctx, user, first.ID); err != nil {
		t.Fatalf("DeleteCigar: %v", err)
	}
	if _, err := s.GetCigar(ctx, user, first.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetCigar after delete: got %v, want ErrNotFound", err)
	}
	if err := s.DeleteCigar(ctx, user, first.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteCigar twice: got %v, want ErrNotFound", err)
	}
}

func testOwnerScope(t *testing.T, s store.Store) {
	ctx := context.Background()
	alice, bob := newUser(), newUser()

	c := newCigar(alice, "Robusto", base)
	if err := s.CreateCigar(ctx, c); err != nil {
		t.Fatalf("CreateCigar: %v", err)
	}
	if _, err := s.GetCigar(ctx, bob, c.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetCigar as other owner: got %v, want ErrNotFound", err)
	}
	if list, err := s.ListCigars(ctx, bob); err != nil || len(list) != 0 {
		t.Errorf("ListCigars as other owner: n=%d err=%v", len(list), err)
	}
	if err := s.DeleteCigar(ctx, bob, c.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteCigar as other owner: got %v, want ErrNotFound", err)
	}
	if list, err := s.ListArchived(ctx, bob); err != nil || len(list) != 0 {
		t.Errorf("ListArchived empty owner: n=%d err=%v", len(list), err)
	}
}

func testArchiveOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	user := newUser()

	var seqs []uint64
	for i, name := range []string{"A", "B", "C"} {
		rec := newArchived(user, name, i+3)
		if err := s.AppendArchived(ctx, rec); err != nil {
			t.Fatalf("AppendArchived %s: %v", name, err)
		}
		if rec.Seq == 0 {
			t.Fatalf("AppendArchived %s: seq not assigned", name)
		}
		seqs = append(seqs, rec.Seq)
	}
	if !(seqs[0] < seqs[1] && seqs[1] < seqs[2]) {
		t.Fatalf("seq not increasing: %v", seqs)
	}

	list, err := s.ListArchived(ctx, user)
	if err != nil {
		t.Fatalf("ListArchived: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("ListArchived: n=%d, want 3", len(list))
	}
	for i, name := range []string{"A", "B", "C"} {
		if list[i].CigarName != name || list[i].Seq != seqs[i] {
			t.Errorf("ListArchived[%d] = %s/%d, want %s/%d", i, list[i].CigarName, list[i].Seq, name, seqs[i])
		}
	}

	got := list[0]
	if got.Duration != 45 || got.Rating != 3 || got.Pairing != "rum" || got.Notes != "bom" {
		t.Errorf("archived fields lost: %+v", got)
	}
	if len(got.Flavors) != 2 || got.Flavors[0] != "Café" {
		t.Errorf("flavors = %v", got.Flavors)
	}
	if got.BurnQuality == nil || *got.BurnQuality != 4 || got.DrawQuality != nil {
		t.Errorf("quality fields = %v/%v", got.BurnQuality, got.DrawQuality)
	}
	if !got.EndTime.Equal(base.Add(45 * time.Minute)) {
		t.Errorf("end time = %v", got.EndTime)
	}
}

func testArchiveDuplicate(t *testing.T, s store.Store) {
	ctx := context.Background()
	user := newUser()

	rec := newArchived(user, "A", 4)
	if err := s.AppendArchived(ctx, rec); err != nil {
		t.Fatalf("AppendArchived: %v", err)
	}
	dup := *rec
	if err := s.AppendArchived(ctx, &dup); !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("AppendArchived duplicate: got %v, want ErrAlreadyExists", err)
	}
	if list, _ := s.ListArchived(ctx, user); len(list) != 1 {
		t.Fatalf("ListArchived after duplicate: n=%d, want 1", len(list))
	}
}

func testMissingKeys(t *testing.T, s store.Store) {
	ctx := context.Background()

	c := newCigar("", "Sem dono", base)
	if err := s.CreateCigar(ctx, c); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("CreateCigar without owner: got %v, want ErrInvalidInput", err)
	}
	rec := newArchived(newUser(), "A", 4)
	rec.ID = ""
	if err := s.AppendArchived(ctx, rec); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("AppendArchived without id: got %v, want ErrInvalidInput", err)
	}
	if rec.Seq != 0 {
		t.Fatalf("rejected record was assigned seq %d", rec.Seq)
	}
}

func testActiveSlot(t *testing.T, s store.Store) {
	ctx := context.Background()
	user := newUser()

	empty, err := s.LoadActive(ctx, user)
	if err != nil {
		t.Fatalf("LoadActive: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("LoadActive on fresh owner: %v", empty)
	}

	snap := []domain.ActiveTasting{
		{ID: "tasting-1", UserID: user, CigarID: "c1", CigarName: "Robusto", CigarBrand: "Casa", StartTime: base},
		{ID: "tasting-2", UserID: user, CigarID: "c2", CigarName: "Toro", CigarBrand: "Casa", StartTime: base.Add(time.Minute)},
	}
	if err := s.SaveActive(ctx, user, snap); err != nil {
		t.Fatalf("SaveActive: %v", err)
	}
	got, err := s.LoadActive(ctx, user)
	if err != nil {
		t.Fatalf("LoadActive: %v", err)
	}
	if len(got) != 2 || got[0].ID != "tasting-1" || got[1].CigarName != "Toro" || !got[0].StartTime.Equal(base) {
		t.Fatalf("LoadActive = %+v", got)
	}

	// Overwritten wholesale.
	if err := s.SaveActive(ctx, user, snap[1:]); err != nil {
		t.Fatalf("SaveActive: %v", err)
	}
	if got, _ := s.LoadActive(ctx, user); len(got) != 1 || got[0].ID != "tasting-2" {
		t.Fatalf("LoadActive after overwrite = %+v", got)
	}

	if err := s.SaveActive(ctx, user, nil); err != nil {
		t.Fatalf("SaveActive nil: %v", err)
	}
	if got, _ := s.LoadActive(ctx, user); got == nil || len(got) != 0 {
		t.Fatalf("LoadActive after clear = %+v", got)
	}
}

func testCompleteTasting(t *testing.T, s store.Store) {
	ctx := context.Background()
	user := newUser()

	first, second := id.MustGenerate(id.PrefixTasting), id.MustGenerate(id.PrefixTasting)
	snap := []domain.ActiveTasting{
		{ID: first, UserID: user, CigarID: "c1", StartTime: base},
		{ID: second, UserID: user, CigarID: "c2", StartTime: base},
	}
	if err := s.SaveActive(ctx, user, snap); err != nil {
		t.Fatalf("SaveActive: %v", err)
	}

	rec := newArchived(user, "A", 5)
	rec.ID = first
	if err := s.CompleteTasting(ctx, rec, snap[1:]); err != nil {
		t.Fatalf("CompleteTasting: %v", err)
	}
	if rec.Seq == 0 {
		t.Fatal("CompleteTasting: seq not assigned")
	}

	active, _ := s.LoadActive(ctx, user)
	if len(active) != 1 || active[0].ID != second {
		t.Errorf("active after complete = %+v", active)
	}
	archived, _ := s.ListArchived(ctx, user)
	if len(archived) != 1 || archived[0].ID != first {
		t.Errorf("archive after complete = %+v", archived)
	}
}

func testCompleteAtomic(t *testing.T, s store.Store) {
	ctx := context.Background()
	user := newUser()

	existing := newArchived(user, "A", 4)
	if err := s.AppendArchived(ctx, existing); err != nil {
		t.Fatalf("AppendArchived: %v", err)
	}
	snap := []domain.ActiveTasting{{ID: existing.ID, UserID: user, CigarID: "c1", StartTime: base}}
	if err := s.SaveActive(ctx, user, snap); err != nil {
		t.Fatalf("SaveActive: %v", err)
	}

	// The archive write fails on the duplicate id, so the active snapshot
	// must not be replaced either.
	dup := *existing
	if err := s.CompleteTasting(ctx, &dup, nil); !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("CompleteTasting duplicate: got %v, want ErrAlreadyExists", err)
	}
	active, _ := s.LoadActive(ctx, user)
	if len(active) != 1 {
		t.Fatalf("active snapshot changed by failed completion: %+v", active)
	}
	if archived, _ := s.ListArchived(ctx, user); len(archived) != 1 {
		t.Fatalf("archive changed by failed completion: n=%d", len(archived))
	}
}

func testConcurrentAppends(t *testing.T, s store.Store) {
	ctx := context.Background()
	user := newUser()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.AppendArchived(ctx, newArchived(user, "C", 1+i%5))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("AppendArchived: %v", err)
		}
	}

	list, err := s.ListArchived(ctx, user)
	if err != nil {
		t.Fatalf("ListArchived: %v", err)
	}
	if len(list) != n {
		t.Fatalf("ListArchived: n=%d, want %d", len(list), n)
	}
	for i := 1; i < len(list); i++ {
		if list[i].Seq <= list[i-1].Seq {
			t.Fatalf("archive out of order at %d: %d <= %d", i, list[i].Seq, list[i-1].Seq)
		}
	}
}

// testOwnerPrefix stores records for an owner whose id extends another
// owner's id and checks the shorter one sees none of them.
func testOwnerPrefix(t *testing.T, s store.Store) {
	ctx := context.Background()
	alice := newUser()
	aliceBob := alice + ":bob"

	c := newCigar(aliceBob, "Alheio", base)
	c.ID = "cigar-x"
	if err := s.CreateCigar(ctx, c); err != nil {
		t.Fatalf("CreateCigar: %v", err)
	}
	if err := s.AppendArchived(ctx, newArchived(aliceBob, "Alheio", 3)); err != nil {
		t.Fatalf("AppendArchived: %v", err)
	}

	if cigars, err := s.ListCigars(ctx, alice); err != nil || len(cigars) != 0 {
		t.Fatalf("ListCigars(%q) = %d records, %v; want none", alice, len(cigars), err)
	}
	if archived, err := s.ListArchived(ctx, alice); err != nil || len(archived) != 0 {
		t.Fatalf("ListArchived(%q) = %d records, %v; want none", alice, len(archived), err)
	}
	if _, err := s.GetCigar(ctx, alice, "bob:cigar-x"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("GetCigar across owners: got %v, want ErrNotFound", err)
	}
	if got, err := s.ListCigars(ctx, aliceBob); err != nil || len(got) != 1 {
		t.Fatalf("ListCigars(%q) = %d records, %v; want 1", aliceBob, len(got), err)
	}
}

func testSameIDsTwoOwners(t *testing.T, s store.Store) {
	ctx := context.Background()
	u1, u2 := newUser(), newUser()

	c1 := newCigar(u1, "Robusto", base)
	c2 := *c1
	c2.UserID = u2
	if err := s.CreateCigar(ctx, c1); err != nil {
		t.Fatalf("CreateCigar owner 1: %v", err)
	}
	if err := s.CreateCigar(ctx, &c2); err != nil {
		t.Fatalf("CreateCigar owner 2 with the same id: %v", err)
	}

	a1 := newArchived(u1, "Robusto", 4)
	a2 := *a1
	a2.UserID = u2
	if err := s.AppendArchived(ctx, a1); err != nil {
		t.Fatalf("AppendArchived owner 1: %v", err)
	}
	if err := s.AppendArchived(ctx, &a2); err != nil {
		t.Fatalf("AppendArchived owner 2 with the same id: %v", err)
	}

	if err := s.DeleteCigar(ctx, u1, c1.ID); err != nil {
		t.Fatalf("DeleteCigar: %v", err)
	}
	if _, err := s.GetCigar(ctx, u2, c1.ID); err != nil {
		t.Fatalf("GetCigar owner 2 after owner 1 deleted: %v", err)
	}
}

func ownerData(user string) *store.OwnerData {
	first, second := newArchived(user, "A", 5), newArchived(user, "B", 3)
	return &store.OwnerData{
		Cigars:   []domain.Cigar{*newCigar(user, "A", base), *newCigar(user, "B", base.Add(time.Minute))},
		Archived: []domain.ArchivedTasting{*first, *second},
		Active: []domain.ActiveTasting{
			{ID: id.MustGenerate(id.PrefixTasting), UserID: user, CigarID: "c1", CigarName: "A", StartTime: base},
		},
	}
}

func testRestoreOwner(t *testing.T, s store.Store) {
	ctx := context.Background()
	user := newUser()
	data := ownerData(user)

	if err := s.RestoreOwner(ctx, user, data); err != nil {
		t.Fatalf("RestoreOwner: %v", err)
	}
	if data.Archived[0].Seq == 0 || data.Archived[1].Seq <= data.Archived[0].Seq {
		t.Fatalf("seq not assigned in order: %d, %d", data.Archived[0].Seq, data.Archived[1].Seq)
	}

	cigars, _ := s.ListCigars(ctx, user)
	if len(cigars) != 2 {
		t.Fatalf("ListCigars: n=%d, want 2", len(cigars))
	}
	archived, _ := s.ListArchived(ctx, user)
	if len(archived) != 2 || archived[0].CigarName != "A" || archived[1].CigarName != "B" {
		t.Fatalf("ListArchived = %+v", archived)
	}
	if active, _ := s.LoadActive(ctx, user); len(active) != 1 {
		t.Fatalf("LoadActive: n=%d, want 1", len(active))
	}

	// The same records under another owner do not conflict.
	other := newUser()
	copied := ownerData(other)
	for i := range copied.Cigars {
		copied.Cigars[i].ID = data.Cigars[i].ID
	}
	for i := range copied.Archived {
		copied.Archived[i].ID = data.Archived[i].ID
	}
	if err := s.RestoreOwner(ctx, other, copied); err != nil {
		t.Fatalf("RestoreOwner second owner with the same ids: %v", err)
	}

	mismatched := ownerData(newUser())
	if err := s.RestoreOwner(ctx, newUser(), mismatched); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("RestoreOwner with foreign records: got %v, want ErrInvalidInput", err)
	}
}

func testRestoreOwnerNotEmpty(t *testing.T, s store.Store) {
	ctx := context.Background()

	for name, seed := range map[string]func(user string) error{
		"cigar": func(user string) error { return s.CreateCigar(ctx, newCigar(user, "X", base)) },
		"archive": func(user string) error {
			return s.AppendArchived(ctx, newArchived(user, "X", 2))
		},
		"active": func(user string) error {
			return s.SaveActive(ctx, user, []domain.ActiveTasting{{ID: "tasting-x", UserID: user, CigarID: "c", StartTime: base}})
		},
	} {
		user := newUser()
		if err := seed(user); err != nil {
			t.Fatalf("%s: seed: %v", name, err)
		}
		if err := s.RestoreOwner(ctx, user, ownerData(user)); !errors.Is(err, store.ErrNotEmpty) {
			t.Fatalf("%s: RestoreOwner: got %v, want ErrNotEmpty", name, err)
		}
		cigars, _ := s.ListCigars(ctx, user)
		archived, _ := s.ListArchived(ctx, user)
		if len(cigars)+len(archived) > 1 {
			t.Fatalf("%s: refused restore wrote records: cigars=%d archived=%d", name, len(cigars), len(archived))
		}
	}

	// An empty active snapshot does not count as data.
	user := newUser()
	if err := s.SaveActive(ctx, user, nil); err != nil {
		t.Fatalf("SaveActive: %v", err)
	}
	if err := s.RestoreOwner(ctx, user, ownerData(user)); err != nil {
		t.Fatalf("RestoreOwner after empty snapshot: %v", err)
	}
}

func testRestoreOwnerAtomic(t *testing.T, s store.Store) {
	ctx := context.Background()
	user := newUser()

	// The second archived record repeats the first id, so the write fails
	// after the cigars went in. Nothing may remain.
	data := ownerData(user)
	data.Archived[1].ID = data.Archived[0].ID
	if err := s.RestoreOwner(ctx, user, data); !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("RestoreOwner with duplicate ids: got %v, want ErrAlreadyExists", err)
	}
	for i := range data.Archived {
		if data.Archived[i].Seq != 0 {
			t.Fatalf("failed restore left seq %d on record %d", data.Archived[i].Seq, i)
		}
	}

	cigars, _ := s.ListCigars(ctx, user)
	archived, _ := s.ListArchived(ctx, user)
	active, _ := s.LoadActive(ctx, user)
	if len(cigars)+len(archived)+len(active) != 0 {
		t.Fatalf("failed restore left cigars=%d archived=%d active=%d", len(cigars), len(archived), len(active))
	}

	// A retry with good data goes through.
	if err := s.RestoreOwner(ctx, user, ownerData(user)); err != nil {
		t.Fatalf("RestoreOwner retry: %v", err)
	}
}
