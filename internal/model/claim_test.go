package model

import "testing"

func TestValidateDecisionNotes(t *testing.T) {
	tests := []struct {
		notes string
		want  error
	}{
		{"", ErrNotesMissing},
		{"   ", ErrNotesMissing},
		{"ok", ErrNotesTooShort},
		{"  123456789  ", ErrNotesTooShort},
		{"1234567890", nil},
		{"Verified via ID card", nil},
	}

	for _, tt := range tests {
		if got := ValidateDecisionNotes(tt.notes); got != tt.want {
			t.Errorf("ValidateDecisionNotes(%q) = %v, want %v", tt.notes, got, tt.want)
		}
	}
}

func TestInTab(t *testing.T) {
	tests := []struct {
		status string
		tab    string
		want   bool
	}{
		{ClaimStatusPending, ClaimTabPending, true},
		{ClaimStatusUnderReview, ClaimTabPending, true},
		{ClaimStatusApproved, ClaimTabPending, false},
		{ClaimStatusApproved, ClaimTabResolved, true},
		{ClaimStatusRejected, ClaimTabResolved, true},
		{ClaimStatusPending, ClaimTabResolved, false},
		{ClaimStatusRejected, "", true},
		{ClaimStatusRejected, ClaimStatusRejected, true},
		{ClaimStatusPending, ClaimStatusRejected, false},
	}

	for _, tt := range tests {
		if got := InTab(tt.status, tt.tab); got != tt.want {
			t.Errorf("InTab(%q, %q) = %v, want %v", tt.status, tt.tab, got, tt.want)
		}
	}
}
