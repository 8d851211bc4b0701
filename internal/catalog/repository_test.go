package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/erazemk/popis/internal/db"
	"github.com/erazemk/popis/internal/model"
	"github.com/erazemk/popis/internal/store"
)

type fakePhotos struct {
	deleted []string
	cleared bool
}

func (f *fakePhotos) Delete(id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakePhotos) Clear() error {
	f.cleared = true
	return nil
}

// failingStore wraps a store and fails every Commit while fail is set.
type failingStore struct {
	*store.Store
	fail bool
}

func (f *failingStore) Commit(ctx context.Context, b store.Batch) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Store.Commit(ctx, b)
}

// testClock returns strictly increasing times one second apart.
func testClock() func() time.Time {
	t := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestRepo(t *testing.T) (*Repository, *store.Store, *fakePhotos) {
	t.Helper()
	s := store.New(db.NewTestDB(t))
	photos := &fakePhotos{}
	repo, err := New(context.Background(), s, photos, WithClock(testClock()), WithIDGenerator(sequentialIDs()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return repo, s, photos
}

func mustCreateItem(t *testing.T, repo *Repository, item model.Item) model.Item {
	t.Helper()
	created, err := repo.CreateItem(context.Background(), item)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return created
}

func categoryNamed(t *testing.T, repo *Repository, name string) model.Category {
	t.Helper()
	for _, c := range repo.Categories(context.Background()) {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("category %q not found", name)
	return model.Category{}
}

func TestNewSeedsDefaultsOnce(t *testing.T) {
	repo, s, _ := newTestRepo(t)
	ctx := context.Background()

	if got := len(repo.Categories(ctx)); got != 7 {
		t.Errorf("expected 7 default categories, got %d", got)
	}
	if got := len(repo.Locations(ctx)); got != 6 {
		t.Errorf("expected 6 default locations, got %d", got)
	}
	if len(repo.CustomCategories(ctx)) != 0 || len(repo.DefaultCategories(ctx)) != 7 {
		t.Error("expected only built-in categories")
	}
	if _, ok := repo.OtherCategory(ctx); !ok {
		t.Error("expected the built-in Other category")
	}

	// A second repository over the same store must not seed again.
	again, err := New(ctx, s, &fakePhotos{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := len(again.Categories(ctx)); got != 7 {
		t.Errorf("expected 7 categories after reopening, got %d", got)
	}
}

func TestCreateItem(t *testing.T) {
	repo, s, _ := newTestRepo(t)
	ctx := context.Background()

	tools := categoryNamed(t, repo, "Tools")
	item := mustCreateItem(t, repo, model.Item{Name: "Drill", CategoryID: tools.ID, Location: "Garage"})

	if item.ID == "" {
		t.Fatal("expected an id to be assigned")
	}
	if item.DateAdded.IsZero() || item.LastModified.Before(item.DateAdded) {
		t.Errorf("bad timestamps: added %v, modified %v", item.DateAdded, item.LastModified)
	}

	got, ok := repo.Item(ctx, item.ID)
	if !ok || got.Name != "Drill" {
		t.Fatalf("expected to find created item, got %+v (ok=%v)", got, ok)
	}

	garage, ok := repo.LocationByName(ctx, "Garage")
	if !ok {
		t.Fatal("expected Garage location")
	}
	if garage.ItemCount != 1 {
		t.Errorf("expected Garage count 1, got %d", garage.ItemCount)
	}
	if garage.LastUsed == nil || !garage.LastUsed.Equal(item.DateAdded) {
		t.Errorf("expected Garage last used %v, got %v", item.DateAdded, garage.LastUsed)
	}
	if c, _ := repo.Category(ctx, tools.ID); c.ItemCount != 1 {
		t.Errorf("expected Tools count 1, got %d", c.ItemCount)
	}

	// Persisted, not just in memory.
	items, err := s.LoadItems(ctx)
	if err != nil {
		t.Fatalf("LoadItems: %v", err)
	}
	if len(items) != 1 || items[0].ID != item.ID {
		t.Errorf("expected item persisted, got %+v", items)
	}

	state, err := s.LoadAppState(ctx)
	if err != nil {
		t.Fatalf("LoadAppState: %v", err)
	}
	if state.TotalItemsCreated != 1 {
		t.Errorf("expected 1 item created, got %d", state.TotalItemsCreated)
	}
	if state.FirstItemDate == nil || !state.FirstItemDate.Equal(item.DateAdded) {
		t.Errorf("expected first item date %v, got %v", item.DateAdded, state.FirstItemDate)
	}

	// The first item date sticks.
	mustCreateItem(t, repo, model.Item{Name: "Saw", CategoryID: tools.ID})
	state, _ = s.LoadAppState(ctx)
	if state.TotalItemsCreated != 2 || !state.FirstItemDate.Equal(item.DateAdded) {
		t.Errorf("unexpected state after second item: %+v", state)
	}
}

func TestUpdateItem(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	item := mustCreateItem(t, repo, model.Item{Name: "Lamp"})

	item.Name = "Desk Lamp"
	if err := repo.UpdateItem(ctx, item); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	got, _ := repo.Item(ctx, item.ID)
	if got.Name != "Desk Lamp" {
		t.Errorf("expected renamed item, got %q", got.Name)
	}
	if !got.LastModified.After(item.LastModified) {
		t.Errorf("expected LastModified bumped past %v, got %v", item.LastModified, got.LastModified)
	}
	if !got.DateAdded.Equal(item.DateAdded) {
		t.Errorf("expected DateAdded unchanged, got %v", got.DateAdded)
	}

	// Unknown id is a silent no-op.
	if err := repo.UpdateItem(ctx, model.Item{ID: "missing", Name: "Ghost"}); err != nil {
		t.Fatalf("UpdateItem unknown: %v", err)
	}
	if len(repo.Items(ctx)) != 1 {
		t.Error("update of unknown id must not add an item")
	}
}

func TestModifyItem(t *testing.T) {
	repo, s, _ := newTestRepo(t)
	ctx := context.Background()

	item := mustCreateItem(t, repo, model.Item{Name: "Camera"})

	got, err := repo.ModifyItem(ctx, item.ID, func(it *model.Item) error {
		it.PhotoIDs = append(it.PhotoIDs, "p1")
		it.ID = "hijacked"
		it.DateAdded = time.Time{}
		return nil
	})
	if err != nil {
		t.Fatalf("ModifyItem: %v", err)
	}
	if got.ID != item.ID || !got.DateAdded.Equal(item.DateAdded) {
		t.Errorf("expected id and DateAdded kept, got %+v", got)
	}
	if !got.LastModified.After(item.LastModified) {
		t.Errorf("expected LastModified bumped, got %v", got.LastModified)
	}

	stored, err := s.LoadItems(ctx)
	if err != nil {
		t.Fatalf("LoadItems: %v", err)
	}
	if len(stored) != 1 || !slices.Equal(stored[0].PhotoIDs, []string{"p1"}) {
		t.Errorf("expected persisted photo, got %+v", stored)
	}

	// An error from fn commits nothing.
	errStop := errors.New("stop")
	_, err = repo.ModifyItem(ctx, item.ID, func(it *model.Item) error {
		it.Name = "Broken"
		return errStop
	})
	if !errors.Is(err, errStop) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if cur, _ := repo.Item(ctx, item.ID); cur.Name != "Camera" {
		t.Errorf("expected name unchanged, got %q", cur.Name)
	}

	if _, err := repo.ModifyItem(ctx, "missing", func(*model.Item) error { return nil }); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestModifyItemConcurrent(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	item := mustCreateItem(t, repo, model.Item{Name: "Album"})

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = repo.ModifyItem(ctx, item.ID, func(it *model.Item) error {
				it.PhotoIDs = append(it.PhotoIDs, fmt.Sprintf("p%d", i))
				return nil
			})
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("ModifyItem %d: %v", i, err)
		}
	}
	got, _ := repo.Item(ctx, item.ID)
	if len(got.PhotoIDs) != workers {
		t.Errorf("expected %d photos, got %v", workers, got.PhotoIDs)
	}
}

func TestLabelsAreReturnedAsCopies(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	used := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	input := model.Category{Name: "Games", LastUsed: &used}
	created, err := repo.CreateCategory(ctx, input)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	*input.LastUsed = time.Time{}
	*created.LastUsed = time.Time{}

	c, _ := repo.Category(ctx, created.ID)
	if c.LastUsed == nil || !c.LastUsed.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("stored LastUsed changed through a returned pointer: %v", c.LastUsed)
	}
	*c.LastUsed = time.Time{}

	mustCreateItem(t, repo, model.Item{Name: "Car", Location: "Garage"})
	loc, ok := repo.LocationByName(ctx, "Garage")
	if !ok || loc.LastUsed == nil {
		t.Fatalf("expected Garage with LastUsed, got %+v", loc)
	}
	want := *loc.LastUsed
	*loc.LastUsed = time.Time{}

	_, categories, locations := repo.Snapshot(ctx)
	for _, c := range categories {
		if c.ID == created.ID && !c.LastUsed.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("category LastUsed shared with caller: %v", c.LastUsed)
		}
	}
	for i, l := range locations {
		if l.Name != "Garage" {
			continue
		}
		if !l.LastUsed.Equal(want) {
			t.Errorf("location LastUsed shared with caller: %v", l.LastUsed)
		}
		*locations[i].LastUsed = time.Time{}
	}
	if again, _ := repo.LocationByName(ctx, "Garage"); !again.LastUsed.Equal(want) {
		t.Errorf("snapshot shares LastUsed with repository: %v", again.LastUsed)
	}
}

func TestDeleteItemsReleasesPhotos(t *testing.T) {
	repo, _, photos := newTestRepo(t)
	ctx := context.Background()

	a := mustCreateItem(t, repo, model.Item{Name: "A", PhotoIDs: []string{"p1", "p2"}, Location: "Kitchen"})
	b := mustCreateItem(t, repo, model.Item{Name: "B", PhotoIDs: []string{"p3"}, Location: "Kitchen"})
	c := mustCreateItem(t, repo, model.Item{Name: "C", PhotoIDs: []string{"p4"}})

	if err := repo.DeleteItems(ctx, []string{a.ID, b.ID, "missing"}); err != nil {
		t.Fatalf("DeleteItems: %v", err)
	}

	items := repo.Items(ctx)
	if len(items) != 1 || items[0].ID != c.ID {
		t.Fatalf("expected only C to remain, got %+v", items)
	}
	if !slices.Equal(photos.deleted, []string{"p1", "p2", "p3"}) {
		t.Errorf("expected photos p1 p2 p3 released, got %v", photos.deleted)
	}
	if kitchen, _ := repo.LocationByName(ctx, "Kitchen"); kitchen.ItemCount != 0 {
		t.Errorf("expected Kitchen count 0, got %d", kitchen.ItemCount)
	}

	if err := repo.DeleteItem(ctx, c.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if len(repo.Items(ctx)) != 0 {
		t.Error("expected no items left")
	}
}

func TestRenameLocationCascades(t *testing.T) {
	repo, s, _ := newTestRepo(t)
	ctx := context.Background()

	for _, name := range []string{"Drill", "Saw", "Hammer"} {
		mustCreateItem(t, repo, model.Item{Name: name, Location: "Garage"})
	}
	mustCreateItem(t, repo, model.Item{Name: "Sofa", Location: "Living Room"})
	// Case differs, so the cascade must leave it alone.
	mustCreateItem(t, repo, model.Item{Name: "Rake", Location: "garage"})

	garage, _ := repo.LocationByName(ctx, "Garage")
	garage.Name = "Workshop"
	if err := repo.UpdateLocation(ctx, garage); err != nil {
		t.Fatalf("UpdateLocation: %v", err)
	}

	got := map[string]string{}
	for _, it := range repo.Items(ctx) {
		got[it.Name] = it.Location
	}
	want := map[string]string{
		"Drill": "Workshop", "Saw": "Workshop", "Hammer": "Workshop",
		"Sofa": "Living Room", "Rake": "garage",
	}
	for name, loc := range want {
		if got[name] != loc {
			t.Errorf("%s: expected location %q, got %q", name, loc, got[name])
		}
	}

	renamed, ok := repo.Location(ctx, garage.ID)
	if !ok || renamed.Name != "Workshop" {
		t.Fatalf("expected location renamed to Workshop, got %+v", renamed)
	}
	if renamed.ItemCount != 3 {
		t.Errorf("expected Workshop count 3, got %d", renamed.ItemCount)
	}

	// Items and location were committed together.
	items, _ := s.LoadItems(ctx)
	moved := 0
	for _, it := range items {
		if it.Location == "Workshop" {
			moved++
		}
	}
	if moved != 3 {
		t.Errorf("expected 3 persisted items at Workshop, got %d", moved)
	}
}

func TestDeleteLocationClearsItems(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	for _, name := range []string{"Pan", "Pot"} {
		mustCreateItem(t, repo, model.Item{Name: name, Location: "Kitchen"})
	}
	mustCreateItem(t, repo, model.Item{Name: "Bed", Location: "Bedroom"})

	kitchen, _ := repo.LocationByName(ctx, "Kitchen")
	if err := repo.DeleteLocation(ctx, kitchen.ID); err != nil {
		t.Fatalf("DeleteLocation: %v", err)
	}

	items := repo.Items(ctx)
	if len(items) != 3 {
		t.Fatalf("expected 3 items to remain, got %d", len(items))
	}
	for _, it := range items {
		switch it.Name {
		case "Pan", "Pot":
			if it.Location != "" {
				t.Errorf("%s: expected cleared location, got %q", it.Name, it.Location)
			}
		case "Bed":
			if it.Location != "Bedroom" {
				t.Errorf("Bed: expected Bedroom, got %q", it.Location)
			}
		}
	}
	if _, ok := repo.Location(ctx, kitchen.ID); ok {
		t.Error("expected Kitchen location to be gone")
	}
}

func TestDeleteCategoryReassigns(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	books := categoryNamed(t, repo, "Books")
	other := categoryNamed(t, repo, "Other")
	tools := categoryNamed(t, repo, "Tools")

	mustCreateItem(t, repo, model.Item{Name: "Novel", CategoryID: books.ID})
	mustCreateItem(t, repo, model.Item{Name: "Atlas", CategoryID: books.ID})
	mustCreateItem(t, repo, model.Item{Name: "Wrench", CategoryID: tools.ID})

	if err := repo.DeleteCategory(ctx, books.ID, other.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	for _, c := range repo.Categories(ctx) {
		if c.ID == books.ID {
			t.Fatal("deleted category still listed")
		}
	}
	for _, it := range repo.Items(ctx) {
		switch it.Name {
		case "Novel", "Atlas":
			if it.CategoryID != other.ID {
				t.Errorf("%s: expected category Other, got %q", it.Name, it.CategoryID)
			}
		case "Wrench":
			if it.CategoryID != tools.ID {
				t.Errorf("Wrench: expected category Tools, got %q", it.CategoryID)
			}
		}
	}
	if c, _ := repo.Category(ctx, other.ID); c.ItemCount != 2 {
		t.Errorf("expected Other count 2, got %d", c.ItemCount)
	}
}

func TestDeleteCategoryWithoutReassignment(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	books := categoryNamed(t, repo, "Books")
	mustCreateItem(t, repo, model.Item{Name: "Novel", CategoryID: books.ID})

	if err := repo.DeleteCategory(ctx, books.ID, ""); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	items := repo.Items(ctx)
	if len(items) != 1 || items[0].CategoryID != books.ID {
		t.Errorf("expected item to keep its dangling category, got %+v", items)
	}
}

func TestDeleteLastCategoryAndLocationRejected(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	categories := repo.Categories(ctx)
	for _, c := range categories[1:] {
		if err := repo.DeleteCategory(ctx, c.ID, ""); err != nil {
			t.Fatalf("DeleteCategory(%s): %v", c.Name, err)
		}
	}
	err := repo.DeleteCategory(ctx, categories[0].ID, "")
	if !errors.Is(err, ErrLastCategory) {
		t.Errorf("expected ErrLastCategory, got %v", err)
	}
	if len(repo.Categories(ctx)) != 1 {
		t.Error("expected the last category to survive")
	}

	locations := repo.Locations(ctx)
	for _, l := range locations[1:] {
		if err := repo.DeleteLocation(ctx, l.ID); err != nil {
			t.Fatalf("DeleteLocation(%s): %v", l.Name, err)
		}
	}
	if err := repo.DeleteLocation(ctx, locations[0].ID); !errors.Is(err, ErrLastLocation) {
		t.Errorf("expected ErrLastLocation, got %v", err)
	}

	// Lookups of unknown ids stay silent.
	if err := repo.DeleteCategory(ctx, "missing", ""); err != nil {
		t.Errorf("expected nil for unknown category, got %v", err)
	}
	if err := repo.DeleteLocation(ctx, "missing"); err != nil {
		t.Errorf("expected nil for unknown location, got %v", err)
	}
}

func TestReassignmentTarget(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	other := categoryNamed(t, repo, "Other")
	books := categoryNamed(t, repo, "Books")

	if got := repo.ReassignmentTarget(ctx, books.ID); got != other.ID {
		t.Errorf("expected Other as target, got %q", got)
	}

	// Deleting Other itself falls back to the first remaining category.
	first := repo.Categories(ctx)[0]
	if got := repo.ReassignmentTarget(ctx, other.ID); got != first.ID {
		t.Errorf("expected first category %q, got %q", first.ID, got)
	}

	// A custom category named Other is not the built-in one.
	if err := repo.DeleteCategory(ctx, other.ID, ""); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if _, err := repo.CreateCategory(ctx, model.Category{Name: "Other"}); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if got := repo.ReassignmentTarget(ctx, first.ID); got == first.ID || got == "" {
		t.Errorf("expected another category, got %q", got)
	}
	if _, ok := repo.OtherCategory(ctx); ok {
		t.Error("custom Other must not count as the built-in one")
	}
}

func TestUpdateCategoryForItems(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	tools := categoryNamed(t, repo, "Tools")
	a := mustCreateItem(t, repo, model.Item{Name: "A"})
	b := mustCreateItem(t, repo, model.Item{Name: "B"})
	mustCreateItem(t, repo, model.Item{Name: "C"})

	if err := repo.UpdateCategoryForItems(ctx, []string{a.ID, b.ID}, tools.ID); err != nil {
		t.Fatalf("UpdateCategoryForItems: %v", err)
	}
	if got := len(repo.ItemsInCategory(ctx, tools.ID)); got != 2 {
		t.Errorf("expected 2 items in Tools, got %d", got)
	}
	if c, _ := repo.Category(ctx, tools.ID); c.ItemCount != 2 {
		t.Errorf("expected Tools count 2, got %d", c.ItemCount)
	}
}

func TestReadAccessors(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	mustCreateItem(t, repo, model.Item{Name: "A", IsImportant: true, PhotoIDs: []string{"p"}, Location: "Garage"})
	mustCreateItem(t, repo, model.Item{Name: "B", Location: "Attic"})
	mustCreateItem(t, repo, model.Item{Name: "C", IsImportant: true, Location: "Garage"})

	if got := len(repo.ImportantItems(ctx)); got != 2 {
		t.Errorf("expected 2 important items, got %d", got)
	}
	if got := len(repo.ItemsWithPhotos(ctx)); got != 1 {
		t.Errorf("expected 1 item with photos, got %d", got)
	}
	if got := len(repo.ItemsWithoutPhotos(ctx)); got != 2 {
		t.Errorf("expected 2 items without photos, got %d", got)
	}
	if got := repo.UniqueLocations(ctx); !slices.Equal(got, []string{"Attic", "Garage"}) {
		t.Errorf("expected [Attic Garage], got %v", got)
	}

	recent := repo.RecentItems(ctx, 2)
	if len(recent) != 2 || recent[0].Name != "C" || recent[1].Name != "B" {
		t.Errorf("expected [C B], got %+v", recent)
	}
	if got := len(repo.RecentItems(ctx, 0)); got != 3 {
		t.Errorf("expected default limit to return all 3, got %d", got)
	}

	// Returned items are copies.
	items := repo.Items(ctx)
	items[0].Name = "changed"
	items[0].PhotoIDs[0] = "changed"
	again := repo.Items(ctx)
	if again[0].Name != "A" || again[0].PhotoIDs[0] != "p" {
		t.Error("mutating a returned item changed repository state")
	}
}

func TestReadsObserveOtherRepositories(t *testing.T) {
	s := store.New(db.NewTestDB(t))
	ctx := context.Background()

	first, err := New(ctx, s, &fakePhotos{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	second, err := New(ctx, s, &fakePhotos{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	item, err := first.CreateItem(ctx, model.Item{Name: "Guitar"})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	got, ok := second.Item(ctx, item.ID)
	if !ok || got.Name != "Guitar" {
		t.Fatalf("expected second repository to see the new item, got %+v (ok=%v)", got, ok)
	}

	if _, err := second.CreateLocation(ctx, model.Location{Name: "Attic"}); err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}
	if _, ok := first.LocationByName(ctx, "Attic"); !ok {
		t.Error("expected first repository to see the new location")
	}
}

func TestPersistenceFailureKeepsMemoryState(t *testing.T) {
	fs := &failingStore{Store: store.New(db.NewTestDB(t))}
	ctx := context.Background()

	repo, err := New(ctx, fs, &fakePhotos{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	fs.fail = true
	item, err := repo.CreateItem(ctx, model.Item{Name: "Camera"})
	if err == nil {
		t.Fatal("expected persistence error")
	}

	if _, ok := repo.Item(ctx, item.ID); !ok {
		t.Error("expected the in-memory item to survive a failed commit")
	}

	persisted, err := fs.LoadItems(ctx)
	if err != nil {
		t.Fatalf("LoadItems: %v", err)
	}
	if len(persisted) != 0 {
		t.Errorf("expected nothing persisted, got %d items", len(persisted))
	}

	// The next successful commit writes the diverged state too.
	fs.fail = false
	if _, err := repo.CreateItem(ctx, model.Item{Name: "Tripod"}); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	persisted, _ = fs.LoadItems(ctx)
	if len(persisted) != 2 {
		t.Errorf("expected 2 persisted items, got %d", len(persisted))
	}
}

func TestReset(t *testing.T) {
	repo, s, photos := newTestRepo(t)
	ctx := context.Background()

	mustCreateItem(t, repo, model.Item{Name: "A"})
	if _, err := repo.CreateCategory(ctx, model.Category{Name: "Games"}); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if err := s.SaveSearchHistory(ctx, []string{"a"}); err != nil {
		t.Fatalf("SaveSearchHistory: %v", err)
	}

	if err := repo.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if len(repo.Items(ctx)) != 0 {
		t.Error("expected no items after reset")
	}
	if got := len(repo.Categories(ctx)); got != 7 {
		t.Errorf("expected 7 seeded categories after reset, got %d", got)
	}
	if !photos.cleared {
		t.Error("expected photos cleared")
	}
	history, _ := s.LoadSearchHistory(ctx)
	if len(history) != 0 {
		t.Errorf("expected history cleared, got %v", history)
	}
}
