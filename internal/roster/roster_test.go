package roster

import (
	"context"
	"testing"

	"github.com/warlocks1507/checkin/internal/apperr"
	"github.com/warlocks1507/checkin/internal/repository/repotest"
)

func TestCreate_TrimsAndRequiresName(t *testing.T) {
	svc := NewService(repotest.New())
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{FullName: "   "}); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	st, err := svc.Create(ctx, CreateInput{FullName: "  Ada Lovelace ", Subteam: " "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.FullName != "Ada Lovelace" {
		t.Fatalf("expected trimmed name, got %q", st.FullName)
	}
	if st.Subteam != nil {
		t.Fatalf("expected nil subteam, got %q", *st.Subteam)
	}
}

func TestCreate_ExistingNameReactivates(t *testing.T) {
	store := repotest.New()
	svc := NewService(store)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{FullName: "Ada Lovelace", Subteam: "Software"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inactive := false
	if _, err := svc.Update(ctx, UpdateInput{ID: first.ID, IsActive: &inactive}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	again, err := svc.Create(ctx, CreateInput{FullName: "Ada Lovelace", Subteam: "Electrical"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.ID != first.ID || !again.IsActive || *again.Subteam != "Electrical" {
		t.Fatalf("expected reactivated student with new subteam, got %+v", again)
	}

	active, err := svc.ListActive(ctx)
	if err != nil || len(active) != 1 {
		t.Fatalf("expected 1 active student, got %d (%v)", len(active), err)
	}
}

func TestUpdate(t *testing.T) {
	store := repotest.New()
	svc := NewService(store)
	ctx := context.Background()
	ada := store.SeedStudent("Ada Lovelace", "Software")
	store.SeedStudent("Grace Hopper", "")

	empty := ""
	st, err := svc.Update(ctx, UpdateInput{ID: ada.ID, Subteam: &empty})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Subteam != nil {
		t.Fatalf("expected subteam cleared, got %q", *st.Subteam)
	}

	taken := "Grace Hopper"
	if _, err := svc.Update(ctx, UpdateInput{ID: ada.ID, FullName: &taken}); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := svc.Update(ctx, UpdateInput{ID: 999}); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	inactive := false
	if _, err := svc.Update(ctx, UpdateInput{ID: ada.ID, IsActive: &inactive}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all, _ := svc.ListAll(ctx)
	active, _ := svc.ListActive(ctx)
	if len(all) != 2 || len(active) != 1 {
		t.Fatalf("expected 2 students with 1 active, got %d and %d", len(all), len(active))
	}
}
