package store

import (
	"context"
	"testing"

	"github.com/spcet/lostfound/internal/db"
)

func TestGetJWTSecret_GeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// First call should generate a secret.
	secret1, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	// Second call should return the same secret.
	secret2, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}
}

func TestSetSettingOverwrites(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	missing, err := GetSetting(ctx, database, "nope")
	if err != nil || missing != "" {
		t.Fatalf("expected empty value for missing key, got %q, %v", missing, err)
	}

	SetSetting(ctx, database, SettingInitialized, "first")
	SetSetting(ctx, database, SettingInitialized, "second")

	got, _ := GetSetting(ctx, database, SettingInitialized)
	if got != "second" {
		t.Errorf("expected 'second', got %q", got)
	}
}
