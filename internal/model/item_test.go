package model

import "testing"

func TestKeywordFromDescription(t *testing.T) {
	tests := []struct {
		description string
		want        string
	}{
		{"black wallet", "wallet"},
		{"Blue Water Bottle, with stickers", "bottle"},
		{"Casio calculator - scratched", "calculator"},
		{"", "item"},
		{"   ", "item"},
	}

	for _, tt := range tests {
		if got := KeywordFromDescription(tt.description); got != tt.want {
			t.Errorf("KeywordFromDescription(%q) = %q, want %q", tt.description, got, tt.want)
		}
	}
}

func TestItemPublicHidesSecret(t *testing.T) {
	item := Item{Description: "black wallet", SecretMessage: "initials AK inside", DeleteReason: "x"}
	pub := item.Public()
	if pub.SecretMessage != "" || pub.DeleteReason != "" {
		t.Errorf("expected secret fields cleared, got %+v", pub)
	}
	if item.SecretMessage == "" {
		t.Error("Public must not modify the original")
	}
}

func TestClaimable(t *testing.T) {
	found := &Item{ItemType: ItemTypeFound, Status: ItemStatusActive}
	if !found.Claimable() {
		t.Error("expected active found item to be claimable")
	}
	lost := &Item{ItemType: ItemTypeLost, Status: ItemStatusActive}
	if lost.Claimable() {
		t.Error("lost items cannot be claimed")
	}
	claimed := &Item{ItemType: ItemTypeFound, Status: ItemStatusClaimed}
	if claimed.Claimable() {
		t.Error("claimed items cannot be claimed again")
	}
}
