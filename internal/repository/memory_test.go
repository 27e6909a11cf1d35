package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"afrilink/internal/domain"
)

func TestMemoryStore_ProductCreateGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	p := domain.Product{VendorID: "v1", Title: "Kente", Price: 1000, Commission: 10, Status: domain.StatusPending, Images: []string{"a.png"}}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("no id")
	}
	if p.CreatedAt.IsZero() {
		t.Fatalf("no created_at")
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil || got.ID != p.ID {
		t.Fatalf("get: %v", err)
	}
	// mutation of a returned copy must not leak into the store
	got.Images[0] = "b.png"
	again, _ := store.GetByID(ctx, p.ID)
	if again.Images[0] != "a.png" {
		t.Fatalf("store mutated through copy")
	}

	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStore_UpdateStatusCAS(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := domain.Product{VendorID: "v1", Title: "A", Status: domain.StatusPending}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatal(err)
	}

	updated, err := store.UpdateStatus(ctx, p.ID, domain.StatusPending, domain.StatusApproved)
	if err != nil {
		t.Fatalf("cas: %v", err)
	}
	if updated.Status != domain.StatusApproved {
		t.Fatalf("status expected approved, got %s", updated.Status)
	}

	// stale expectation
	if _, err := store.UpdateStatus(ctx, p.ID, domain.StatusPending, domain.StatusRejected); !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	got, _ := store.GetByID(ctx, p.ID)
	if got.Status != domain.StatusApproved {
		t.Fatalf("stale cas changed status to %s", got.Status)
	}

	if _, err := store.UpdateStatus(ctx, "missing", domain.StatusPending, domain.StatusApproved); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestList_FilteringAndOrder(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return base })

	add := func(vendor, title string, price int64, st domain.ProductStatus, at time.Time) string {
		p := domain.Product{VendorID: vendor, Title: title, Price: price, Status: st, CreatedAt: at}
		if err := store.Create(ctx, &p); err != nil {
			t.Fatal(err)
		}
		return p.ID
	}
	oldest := add("v1", "Shea Butter", 100, domain.StatusApproved, base)
	newest := add("v1", "Ankara Dress", 50, domain.StatusPending, base.Add(2*time.Hour))
	middle := add("v2", "Baobab Oil", 150, domain.StatusApproved, base.Add(time.Hour))
	tieLater := add("v2", "Tie", 10, domain.StatusApproved, base)

	list, _ := store.List(ctx, ProductFilter{})
	want := []string{newest, middle, tieLater, oldest}
	if len(list) != len(want) {
		t.Fatalf("expected %d, got %d", len(want), len(list))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Fatalf("order mismatch at %d: %s", i, list[i].Title)
		}
	}

	list, _ = store.List(ctx, ProductFilter{VendorID: "v1"})
	if len(list) != 2 {
		t.Fatalf("vendor filter: %d", len(list))
	}

	list, _ = store.List(ctx, ProductFilter{Status: domain.StatusApproved})
	if len(list) != 3 {
		t.Fatalf("status filter: %d", len(list))
	}

	list, _ = store.List(ctx, ProductFilter{TitleSubstring: "OIL"})
	if len(list) != 1 || list[0].ID != middle {
		t.Fatalf("title filter: %v", list)
	}

	min := int64(100)
	list, _ = store.List(ctx, ProductFilter{MinPrice: &min})
	for _, p := range list {
		if p.Price < min {
			t.Fatalf("min filter fail")
		}
	}

	max := int64(50)
	list, _ = store.List(ctx, ProductFilter{MaxPrice: &max})
	for _, p := range list {
		if p.Price > max {
			t.Fatalf("max filter fail")
		}
	}
}

func TestMemoryNotifications_Scoping(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	notes := NewMemoryNotifications(store)

	for _, u := range []string{"u1", "u1", "u1", "u2"} {
		n := domain.Notification{UserID: u, Title: "t", Type: domain.NotificationInfo}
		if err := notes.Create(ctx, &n); err != nil {
			t.Fatal(err)
		}
	}

	list, _ := notes.ListByUser(ctx, "u1", 2)
	if len(list) != 2 {
		t.Fatalf("limit: %d", len(list))
	}
	if c, _ := notes.CountUnread(ctx, "u1"); c != 3 {
		t.Fatalf("unread: %d", c)
	}

	other, _ := notes.ListByUser(ctx, "u2", 0)
	if _, err := notes.MarkRead(ctx, "u1", other[0].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign mark read: %v", err)
	}
	if _, err := notes.MarkRead(ctx, "u1", list[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if c, _ := notes.CountUnread(ctx, "u1"); c != 2 {
		t.Fatalf("unread after mark: %d", c)
	}

	changed, _ := notes.MarkAllRead(ctx, "u1")
	if len(changed) != 2 {
		t.Fatalf("mark all: %d", len(changed))
	}
	if c, _ := notes.CountUnread(ctx, "u2"); c != 1 {
		t.Fatalf("u2 touched: %d", c)
	}

	if _, err := notes.Delete(ctx, "u1", list[1].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	deleted, _ := notes.DeleteAll(ctx, "u1")
	if len(deleted) != 2 {
		t.Fatalf("delete all: %d", len(deleted))
	}
	if rest, _ := notes.ListByUser(ctx, "u2", 0); len(rest) != 1 {
		t.Fatalf("u2 deleted")
	}
}

func TestMemoryNotifications_LinkIsCopied(t *testing.T) {
	ctx := context.Background()
	notes := NewMemoryNotifications(NewMemoryStore())

	link := "/vendor/products/p1"
	n := domain.Notification{UserID: "u1", Title: "t", Type: domain.NotificationInfo, Link: &link}
	if err := notes.Create(ctx, &n); err != nil {
		t.Fatal(err)
	}
	link = "/changed-by-creator"

	list, _ := notes.ListByUser(ctx, "u1", 0)
	*list[0].Link = "/changed-by-reader"
	read, err := notes.MarkRead(ctx, "u1", n.ID)
	if err != nil {
		t.Fatal(err)
	}
	*read.Link = "/changed-again"

	list, _ = notes.ListByUser(ctx, "u1", 0)
	if got := *list[0].Link; got != "/vendor/products/p1" {
		t.Fatalf("stored link mutated: %s", got)
	}
}
