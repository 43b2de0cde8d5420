package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Claim is a student's assertion of ownership over a found item.
type Claim struct {
	ID                    int64                  `json:"id"`
	ItemID                int64                  `json:"item_id"`
	StudentID             int64                  `json:"student_id"`
	Message               string                 `json:"message,omitempty"`
	ProductType           string                 `json:"product_type,omitempty"`
	Description           string                 `json:"description,omitempty"`
	IdentificationMarks   string                 `json:"identification_marks,omitempty"`
	LostLocation          string                 `json:"lost_location,omitempty"`
	ApproximateDate       string                 `json:"approximate_date,omitempty"`
	MatchPercentage       int                    `json:"match_percentage"`
	QAData                []QAPair               `json:"qa_data"`
	AIAnalysis            *ClaimAnalysis         `json:"ai_analysis,omitempty"`
	VerificationQuestions []VerificationQuestion `json:"verification_questions"`
	Status                string                 `json:"status"`
	Notes                 string                 `json:"notes,omitempty"`
	DecidedBy             *int64                 `json:"decided_by,omitempty"`
	DecidedAt             *time.Time             `json:"decided_at,omitempty"`
	CreatedAt             time.Time              `json:"created_at"`

	// Joined fields (not always populated).
	ItemDescription string `json:"item_description,omitempty"`
	ItemKeyword     string `json:"item_keyword,omitempty"`
	StudentName     string `json:"student_name,omitempty"`
	RollNumber      string `json:"roll_number,omitempty"`
}

// QAPair is one verification question with the claimant's answer.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// VerificationQuestion is a follow-up question sent by an admin.
type VerificationQuestion struct {
	Question   string     `json:"question"`
	Answer     string     `json:"answer,omitempty"`
	AskedAt    time.Time  `json:"asked_at"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
}

// ClaimAnalysis is the advisory review attached to an AI-powered claim.
type ClaimAnalysis struct {
	ConfidenceBand         string   `json:"confidence_band"`
	Reasoning              string   `json:"reasoning"`
	WhatMatched            []string `json:"what_matched"`
	WhatDidNotMatch        []string `json:"what_did_not_match"`
	Inconsistencies        []string `json:"inconsistencies"`
	MissingInformation     []string `json:"missing_information"`
	RecommendationForAdmin string   `json:"recommendation_for_admin,omitempty"`
}

// Claim statuses.
const (
	ClaimStatusPending     = "pending"
	ClaimStatusUnderReview = "under_review"
	ClaimStatusApproved    = "approved"
	ClaimStatusRejected    = "rejected"
)

// Confidence bands.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// Claim list tabs used by the admin review screen.
const (
	ClaimTabPending  = "pending"
	ClaimTabResolved = "resolved"
)

// RequiredAnswers is the number of Q&A pairs an AI-powered claim carries.
const RequiredAnswers = 3

// MinDecisionNotes is the minimum trimmed length of a decision reason.
const MinDecisionNotes = 10

// ErrNotesTooShort is returned for a decision without a meaningful reason.
var ErrNotesTooShort = errors.New("please provide a meaningful reason (minimum 10 characters)")

// ErrNotesMissing is returned for a decision with an empty reason.
var ErrNotesMissing = errors.New("reason is mandatory for claim decisions")

// ValidateDecisionNotes checks the admin's justification for a decision.
func ValidateDecisionNotes(notes string) error {
	trimmed := strings.TrimSpace(notes)
	if trimmed == "" {
		return ErrNotesMissing
	}
	if utf8.RuneCountInString(trimmed) < MinDecisionNotes {
		return ErrNotesTooShort
	}
	return nil
}

// ValidDecision reports whether status is a terminal decision.
func ValidDecision(status string) bool {
	return status == ClaimStatusApproved || status == ClaimStatusRejected
}

// Open reports whether the claim still awaits a decision.
func (c *Claim) Open() bool {
	return c.Status == ClaimStatusPending || c.Status == ClaimStatusUnderReview
}

// InTab reports whether a claim with the given status belongs to a tab.
// An empty tab matches everything.
func InTab(status, tab string) bool {
	switch tab {
	case ClaimTabPending:
		return status == ClaimStatusPending || status == ClaimStatusUnderReview
	case ClaimTabResolved:
		return status == ClaimStatusApproved || status == ClaimStatusRejected
	case "":
		return true
	}
	return status == tab
}
