package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/civicsite/civicsite/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}

func TestAdminCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.HasAnyAdmin(ctx)
	if err != nil {
		t.Fatalf("HasAnyAdmin: %v", err)
	}
	if ok {
		t.Fatal("fresh store should have no admins")
	}

	admin := &model.Admin{Email: "  Admin@Example.COM ", PasswordHash: "$2a$12$somebcrypthash"}
	if err := s.CreateAdmin(ctx, admin); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if admin.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if admin.Email != "admin@example.com" {
		t.Errorf("Email = %q, want normalized", admin.Email)
	}

	// Lookup is case-insensitive and trimmed.
	got, err := s.GetAdminByEmail(ctx, "ADMIN@example.com")
	if err != nil {
		t.Fatalf("GetAdminByEmail: %v", err)
	}
	if got.PasswordHash != admin.PasswordHash {
		t.Errorf("PasswordHash mismatch")
	}

	if _, err := s.GetAdminByEmail(ctx, "missing@example.com"); err != ErrNotFound {
		t.Errorf("missing admin: err = %v, want ErrNotFound", err)
	}

	// Email uniqueness, regardless of case.
	dup := &model.Admin{Email: "ADMIN@EXAMPLE.COM", PasswordHash: "x"}
	if err := s.CreateAdmin(ctx, dup); err == nil {
		t.Error("expected unique violation for duplicate email")
	}

	if err := s.UpdateAdminLastLogin(ctx, admin.ID); err != nil {
		t.Fatalf("UpdateAdminLastLogin: %v", err)
	}
	got, _ = s.GetAdminByEmail(ctx, admin.Email)
	if got.LastLoginAt == nil {
		t.Error("expected last_login_at to be set")
	}

	// The password hash never leaves the store in serialized form.
	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal admin: %v", err)
	}
	var fields map[string]interface{}
	json.Unmarshal(data, &fields)
	for k := range fields {
		if k == "password_hash" || k == "passwordHash" {
			t.Errorf("serialized admin leaks %q", k)
		}
	}
}

func TestMemberPaginationAndVisibility(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		m := &model.Member{
			Name:     "Member",
			Phone:    "+15551234567",
			Area:     "Downtown",
			JoinedAt: base.Add(time.Duration(i) * time.Hour),
			IsPublic: true,
		}
		if err := s.CreateMember(ctx, m); err != nil {
			t.Fatalf("CreateMember: %v", err)
		}
	}

	members, total, err := s.ListMembers(ctx, true, 1, 12)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if total != 15 {
		t.Errorf("total = %d, want 15", total)
	}
	if len(members) != 12 {
		t.Errorf("page 1 size = %d, want 12", len(members))
	}
	// Newest first.
	if !members[0].JoinedAt.After(members[1].JoinedAt) {
		t.Error("expected joined_at descending order")
	}

	page2, _, err := s.ListMembers(ctx, true, 2, 12)
	if err != nil {
		t.Fatalf("ListMembers page 2: %v", err)
	}
	if len(page2) != 3 {
		t.Errorf("page 2 size = %d, want 3", len(page2))
	}

	// Hide one member: drops from the public listing, stays in the full one.
	hidden := members[0]
	if err := s.SetMemberVisibility(ctx, hidden.ID, false); err != nil {
		t.Fatalf("SetMemberVisibility: %v", err)
	}
	_, publicTotal, _ := s.ListMembers(ctx, true, 1, 12)
	if publicTotal != 14 {
		t.Errorf("public total = %d, want 14", publicTotal)
	}
	_, allTotal, _ := s.ListMembers(ctx, false, 1, 20)
	if allTotal != 15 {
		t.Errorf("all total = %d, want 15", allTotal)
	}

	got, err := s.GetMember(ctx, hidden.ID)
	if err != nil {
		t.Fatalf("GetMember: %v", err)
	}
	if got.IsPublic {
		t.Error("expected member to be hidden")
	}

	if err := s.SetMemberVisibility(ctx, 99999, true); err != ErrNotFound {
		t.Errorf("missing member: err = %v, want ErrNotFound", err)
	}
}

func TestEventLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	later := &model.Event{
		Title:       "Town Hall",
		Description: "Monthly neighborhood town hall meeting.",
		Date:        time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC),
		ImageURL:    "https://example.com/town-hall.jpg",
	}
	sooner := &model.Event{
		Title:       "Park Cleanup",
		Description: "Volunteer cleanup day at Riverside Park.",
		Date:        time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		ImageURL:    "https://example.com/cleanup.jpg",
	}
	for _, e := range []*model.Event{later, sooner} {
		if err := s.CreateEvent(ctx, e); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	events, err := s.ListEvents(ctx)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Title != "Park Cleanup" {
		t.Errorf("expected soonest event first, got %q", events[0].Title)
	}

	if err := s.DeleteEvent(ctx, sooner.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if err := s.DeleteEvent(ctx, sooner.ID); err != ErrNotFound {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
	events, _ = s.ListEvents(ctx)
	if len(events) != 1 {
		t.Errorf("len(events) after delete = %d, want 1", len(events))
	}
}
