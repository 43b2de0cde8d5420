package store

import (
	"context"
	"testing"

	"github.com/spcet/lostfound/internal/db"
	"github.com/spcet/lostfound/internal/model"
)

func TestCreateAndGetAdmin(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	admin, err := CreateAdmin(ctx, database, "warden", "Hostel Warden", "hash123", model.RoleAdmin)
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if admin.Username != "warden" {
		t.Errorf("expected username 'warden', got %q", admin.Username)
	}
	if admin.FullName != "Hostel Warden" {
		t.Errorf("expected full name, got %q", admin.FullName)
	}

	got, err := GetAdminByUsername(ctx, database, "warden")
	if err != nil {
		t.Fatalf("GetAdminByUsername: %v", err)
	}
	if got == nil || got.ID != admin.ID {
		t.Errorf("expected admin %d, got %+v", admin.ID, got)
	}
}

func TestCreateAdminDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateAdmin(ctx, database, "dup", "", "hash", model.RoleAdmin)
	_, err := CreateAdmin(ctx, database, "dup", "", "hash", model.RoleAdmin)
	if err != ErrDuplicateAccount {
		t.Errorf("expected ErrDuplicateAccount, got %v", err)
	}
}

func TestSoftDeleteAdminFreesUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a, _ := CreateAdmin(ctx, database, "reuse", "", "hash", model.RoleAdmin)
	if err := DeleteAdmin(ctx, database, a.ID); err != nil {
		t.Fatalf("DeleteAdmin: %v", err)
	}

	admins, _ := ListAdmins(ctx, database)
	if len(admins) != 0 {
		t.Errorf("expected 0 admins after delete, got %d", len(admins))
	}

	gone, _ := GetAdminByUsername(ctx, database, "reuse")
	if gone != nil {
		t.Error("deleted admin must not be found by username")
	}

	if _, err := CreateAdmin(ctx, database, "reuse", "", "hash", model.RoleAdmin); err != nil {
		t.Errorf("expected username reuse after soft delete, got %v", err)
	}
}

func TestDeleteAdminTwice(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a, _ := CreateAdmin(ctx, database, "twice", "", "hash", model.RoleAdmin)
	DeleteAdmin(ctx, database, a.ID)
	if err := DeleteAdmin(ctx, database, a.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestUpdateAdminPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a, _ := CreateAdmin(ctx, database, "pw", "", "old", model.RoleAdmin)
	if err := UpdateAdminPassword(ctx, database, a.ID, "new"); err != nil {
		t.Fatalf("UpdateAdminPassword: %v", err)
	}
	got, _ := GetAdmin(ctx, database, a.ID)
	if got.PasswordHash != "new" {
		t.Errorf("expected updated hash, got %q", got.PasswordHash)
	}
}
