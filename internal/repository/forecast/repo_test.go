package forecast

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/econext/catalog-engine/internal/db/memory"
	"github.com/econext/catalog-engine/internal/domain"
	domforecast "github.com/econext/catalog-engine/internal/domain/forecast"
)

var base = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func run(productID string, i int) domforecast.Result {
	return domforecast.Result{
		RunID:         fmt.Sprintf("run-%02d", i),
		ProductID:     productID,
		CurrentPrice:  10.5,
		Predictions:   []float64{10.6, 10.72, 10.84, 10.96, 11.08, 11.2, 11.32},
		ChangePercent: 2.97,
		Recommend:     domforecast.Neutral,
		Confidence:    0.8,
		CreatedAt:     base.Add(time.Duration(i) * time.Minute),
	}
}

func TestSaveAndLatest(t *testing.T) {
	repo := New(memory.NewStore(), "")
	ctx := context.Background()

	for i := range 3 {
		if err := repo.Save(ctx, run("p1", i)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	got, err := repo.Latest(ctx, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.RunID != "run-02" {
		t.Fatalf("Latest() = %s, want run-02", got.RunID)
	}
	if len(got.Predictions) != 7 || got.Recommend != domforecast.Neutral || !got.CreatedAt.Equal(run("p1", 2).CreatedAt) {
		t.Fatalf("round trip lost data: %+v", got)
	}
}

func TestLatest_NotFound(t *testing.T) {
	repo := New(memory.NewStore(), "")
	if _, err := repo.Latest(context.Background(), "p1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAll(t *testing.T) {
	repo := New(memory.NewStore(), "")
	ctx := context.Background()

	_ = repo.Save(ctx, run("p1", 0))
	_ = repo.Save(ctx, run("p2", 1))
	if err := repo.DeleteAll(ctx, "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.Latest(ctx, "p1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if got, err := repo.Latest(ctx, "p2"); err != nil || got.RunID != "run-01" {
		t.Fatalf("other products must keep their runs, got %+v, %v", got, err)
	}
	if err := repo.DeleteAll(ctx, "ghost"); err != nil {
		t.Fatalf("deleting missing history: %v", err)
	}
}

func TestHistory_OrderAndLimit(t *testing.T) {
	repo := New(memory.NewStore(), "")
	ctx := context.Background()
	for _, i := range []int{4, 1, 3, 0, 2} {
		_ = repo.Save(ctx, run("p1", i))
	}
	_ = repo.Save(ctx, run("other", 9))

	got, err := repo.History(ctx, "p1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"run-04", "run-03", "run-02"}
	if len(got) != len(want) {
		t.Fatalf("got %d runs, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].RunID != want[i] {
			t.Fatalf("run %d = %s, want %s", i, got[i].RunID, want[i])
		}
	}
}

func TestSave_PrunesBeyondRetention(t *testing.T) {
	repo := New(memory.NewStore(), "").WithRetention(2)
	ctx := context.Background()
	for i := range 5 {
		_ = repo.Save(ctx, run("p1", i))
	}
	got, _ := repo.History(ctx, "p1", 0)
	if len(got) != 2 || got[0].RunID != "run-04" || got[1].RunID != "run-03" {
		t.Fatalf("unexpected retained runs: %+v", got)
	}
}

func TestHistory_RejectsUnknownLabel(t *testing.T) {
	ms := memory.NewStore()
	repo := New(ms, "")
	_ = ms.HSet(context.Background(), "catalog:forecast:p1", map[string]string{
		"00000000000000000001:x": `{"run_id":"x","recommendation":"sell_everything"}`,
	})
	if _, err := repo.History(context.Background(), "p1", 0); err == nil {
		t.Fatal("expected decode error")
	}
}
