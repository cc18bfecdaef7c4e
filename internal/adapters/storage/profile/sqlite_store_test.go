package profile

import (
	"context"
	"errors"
	"testing"

	"opsboard/internal/adapters/storage/storagetest"
	domain "opsboard/internal/domain/profile"
)

// TestSQLiteStore tests saving, lookup by ID set and ordering.
func TestSQLiteStore(t *testing.T) {
	store := NewSQLiteStore(storagetest.Open(t))
	ctx := context.Background()

	for _, p := range []domain.Profile{
		{ID: "p2", Name: "Ben Ortiz", Role: "Engineer", Email: "ben@example.com", PicturePath: "ben.jpg"},
		{ID: "p1", Name: "Ana Ruiz", Role: "Designer", Email: "ana@example.com"},
		{ID: "p3", Name: "Cy Walker", Role: "PM", Email: "cy@example.com"},
	} {
		if err := store.Save(ctx, p); err != nil {
			t.Fatalf("Save %s: %v", p.ID, err)
		}
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].Name != "Ana Ruiz" {
		t.Fatalf("List = %+v", all)
	}

	some, err := store.GetByIDs(ctx, []string{"p3", "p2", "ghost"})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(some) != 2 || some[0].ID != "p2" || some[1].ID != "p3" {
		t.Fatalf("GetByIDs = %+v", some)
	}
	if none, err := store.GetByIDs(ctx, nil); err != nil || none != nil {
		t.Fatalf("GetByIDs(nil) = %v, %v", none, err)
	}

	got, err := store.GetByID(ctx, "p2")
	if err != nil || got.PicturePath != "ben.jpg" {
		t.Fatalf("GetByID = %+v, %v", got, err)
	}
	if _, err := store.GetByID(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID ghost err = %v", err)
	}
}
