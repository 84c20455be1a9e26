package catalog

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/econext/catalog-engine/internal/db"
	"github.com/econext/catalog-engine/internal/db/memory"
	"github.com/econext/catalog-engine/internal/domain"
	"github.com/econext/catalog-engine/internal/domain/product"
)

func newTestRepo(t *testing.T) (*Repo, *memory.Store) {
	t.Helper()
	ms := memory.NewStore()
	return New(ms, ""), ms
}

func testProduct(t *testing.T, id string, tags ...string) product.Product {
	t.Helper()
	p, err := product.New(id, "Solar Power Bank", "Electronics", tags,
		"20000 mAh", "https://img.example/"+id+".png", decimal.RequireFromString("49.90"))
	if err != nil {
		t.Fatalf("product.New: %v", err)
	}
	return p
}

func TestUpsertAndGetProduct(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	want := testProduct(t, "p1", "solar", "power bank")
	if err := repo.UpsertProduct(ctx, want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := repo.GetProduct(ctx, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name() != want.Name() || got.Category() != want.Category() || got.ImageURL() != want.ImageURL() {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if !reflect.DeepEqual(got.Tags(), []string{"solar", "power bank"}) {
		t.Fatalf("tags = %v", got.Tags())
	}
	if !got.CurrentPrice().Equal(decimal.RequireFromString("49.9")) {
		t.Fatalf("price = %s", got.CurrentPrice())
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)
	if _, err := repo.GetProduct(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVersion_BumpsOnMutation(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	if v, _ := repo.Version(ctx); v != 0 {
		t.Fatalf("fresh version = %d", v)
	}
	_ = repo.UpsertProduct(ctx, testProduct(t, "p1"))
	_ = repo.UpsertProduct(ctx, testProduct(t, "p2"))
	if v, _ := repo.Version(ctx); v != 2 {
		t.Fatalf("version = %d, want 2", v)
	}
	if err := repo.DeleteProduct(ctx, "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := repo.Version(ctx); v != 3 {
		t.Fatalf("version = %d, want 3", v)
	}
	if err := repo.DeleteProduct(ctx, "p1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if v, _ := repo.Version(ctx); v != 3 {
		t.Fatal("failed delete must not bump the version")
	}
}

func TestUpsertProduct_ReplacesFields(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	_ = repo.UpsertProduct(ctx, testProduct(t, "p1", "a", "b"))

	p, _ := product.New("p1", "Renamed", "", nil, "", "", decimal.NewFromInt(1))
	_ = repo.UpsertProduct(ctx, p)
	got, _ := repo.GetProduct(ctx, "p1")
	if got.Name() != "Renamed" || len(got.Tags()) != 0 || got.ImageURL() != "" {
		t.Fatalf("stale fields after upsert: %+v", got)
	}
}

func TestListProducts_SortedByID(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		_ = repo.UpsertProduct(ctx, testProduct(t, id))
	}
	got, err := repo.ListProducts(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ids []string
	for _, p := range got {
		ids = append(ids, p.ID())
	}
	if !reflect.DeepEqual(ids, []string{"a", "b", "c"}) {
		t.Fatalf("ids = %v", ids)
	}
}

func TestListProducts_Empty(t *testing.T) {
	repo, _ := newTestRepo(t)
	got, err := repo.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty catalog, got %d", len(got))
	}
}

func TestPrices(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	_ = repo.UpsertProduct(ctx, testProduct(t, "p1"))

	day := func(d int) time.Time { return time.Date(2026, 10, d, 15, 30, 0, 0, time.UTC) }
	if err := repo.RecordPrice(ctx, "p1", day(3), decimal.RequireFromString("10.10")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.RecordPrice(ctx, "p1", day(1), decimal.RequireFromString("10.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Same day again replaces.
	if err := repo.RecordPrice(ctx, "p1", day(3), decimal.RequireFromString("10.40")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.ImportPrices(ctx, []Observation{
		{ProductID: "p1", Date: day(2), Price: decimal.RequireFromString("10.20")},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.ListPrices(ctx, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"10", "10.2", "10.4"}
	if len(got) != len(want) {
		t.Fatalf("got %d points, want %d", len(got), len(want))
	}
	for i, p := range got {
		if p.Price.String() != want[i] || p.Date.Day() != i+1 {
			t.Fatalf("point %d = %s @ %s", i, p.Price, p.Date)
		}
	}
}

func TestRecordPrice_Errors(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	if err := repo.RecordPrice(ctx, "ghost", time.Now(), decimal.NewFromInt(1)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_ = repo.UpsertProduct(ctx, testProduct(t, "p1"))
	if err := repo.RecordPrice(ctx, "p1", time.Now(), decimal.Zero); !errors.Is(err, domain.ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestListPrices_CorruptData(t *testing.T) {
	repo, ms := newTestRepo(t)
	_ = ms.HSet(context.Background(), "catalog:prices:p1", map[string]string{"yesterday": "1"})
	if _, err := repo.ListPrices(context.Background(), "p1"); !errors.Is(err, domain.ErrInvalidSeries) {
		t.Fatalf("expected ErrInvalidSeries, got %v", err)
	}
}

// failingStore surfaces storage errors.
type failingStore struct {
	*memory.Store
}

func (failingStore) HGetAll(context.Context, string) (map[string]string, error) {
	return nil, &db.Error{Op: db.OpHGetAll, Err: errors.New("connection reset")}
}

func TestGetProduct_StorageError(t *testing.T) {
	repo := New(failingStore{memory.NewStore()}, "")
	_, err := repo.GetProduct(context.Background(), "p1")
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}
