// Package claimflow drives the three-question chat a student goes through
// to claim a found item.
package claimflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spcet/lostfound/internal/model"
	"github.com/spcet/lostfound/internal/similarity"
)

// State is a step of the claim chat.
type State int

const (
	Asking State = iota
	AwaitingConfirmation
	Submitting
	Submitted
	Cancelled
)

func (s State) String() string {
	switch s {
	case Asking:
		return "asking"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether no further input is accepted.
func (s State) Terminal() bool {
	return s == Submitted || s == Cancelled
}

// MinAnswerLength is the minimum trimmed length of an answer.
const MinAnswerLength = 15

// ErrEmptyInput is reported for blank input.
var ErrEmptyInput = errors.New("Please type an answer")

// ErrFinished is returned for input after the chat has ended.
var ErrFinished = errors.New("claim chat has ended")

// ShortAnswerError is reported for an answer below MinAnswerLength.
type ShortAnswerError struct {
	Length int
}

func (e *ShortAnswerError) Error() string {
	return fmt.Sprintf("Please provide more detail (%d/%d characters minimum)", e.Length, MinAnswerLength)
}

// Submission is the claim sent once the student confirms.
type Submission struct {
	ItemID              int64
	ProductType         string
	Description         string
	IdentificationMarks string
	LostLocation        string
	ApproximateDate     string
	MatchPercentage     int
	QAData              []model.QAPair
}

// Submitter delivers a confirmed claim to the backend.
type Submitter interface {
	SubmitClaim(ctx context.Context, s Submission) (*model.Claim, error)
}

// Reply is what the chat shows after one input.
type Reply struct {
	Lines []string
	State State
	// Err is a validation error for the input, if it was rejected.
	Err error
}

// FallbackQuestions are asked when no generated questions are available.
func FallbackQuestions(keyword string) []string {
	if keyword == "" {
		keyword = "item"
	}
	return []string{
		fmt.Sprintf("Describe this %s in detail - color, brand, model, any unique marks?", keyword),
		fmt.Sprintf("What unique feature or personal mark on this %s proves it's yours?", keyword),
		fmt.Sprintf("When and where did you lose this %s? Be specific about the location.", keyword),
	}
}

const confirmPrompt = "Submit this claim for review? Type 'yes' to submit or 'no' to cancel."

// Flow is the claim chat for one item. It is not safe for concurrent use.
type Flow struct {
	item      model.Item
	questions []string
	answers   []string
	state     State
	submitter Submitter
	claim     *model.Claim
}

// New starts a chat for item. Unless exactly model.RequiredAnswers
// non-empty questions are given, the fallback questions are used.
func New(item model.Item, questions []string, submitter Submitter) *Flow {
	if !usable(questions) {
		questions = FallbackQuestions(item.ItemKeyword)
	}
	return &Flow{
		item:      item,
		questions: questions,
		state:     Asking,
		submitter: submitter,
	}
}

func usable(questions []string) bool {
	if len(questions) != model.RequiredAnswers {
		return false
	}
	for _, q := range questions {
		if strings.TrimSpace(q) == "" {
			return false
		}
	}
	return true
}

// State returns the current step.
func (f *Flow) State() State { return f.state }

// Index returns the zero-based number of the question being asked.
func (f *Flow) Index() int { return len(f.answers) }

// Questions returns the questions of this chat.
func (f *Flow) Questions() []string { return f.questions }

// Claim returns the submitted claim once the chat reaches Submitted.
func (f *Flow) Claim() *model.Claim { return f.claim }

// Start returns the greeting and the first question.
func (f *Flow) Start() Reply {
	return Reply{
		Lines: []string{
			fmt.Sprintf("Let's verify your claim for this %s. Please answer %d questions.",
				f.keyword(), len(f.questions)),
			f.questionLine(0),
		},
		State: f.state,
	}
}

func (f *Flow) keyword() string {
	if f.item.ItemKeyword == "" {
		return "item"
	}
	return f.item.ItemKeyword
}

func (f *Flow) questionLine(i int) string {
	return fmt.Sprintf("Question %d of %d: %s", i+1, len(f.questions), f.questions[i])
}

// Input feeds one typed line into the chat. Validation failures are
// reported in Reply.Err and leave the state unchanged. A failed submission
// returns the error and puts the chat back to AwaitingConfirmation.
func (f *Flow) Input(ctx context.Context, text string) (Reply, error) {
	if f.state.Terminal() {
		return Reply{State: f.state}, ErrFinished
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return f.reject(ErrEmptyInput), nil
	}

	switch f.state {
	case Asking:
		return f.answer(trimmed), nil
	case AwaitingConfirmation:
		return f.confirm(ctx, trimmed)
	}
	return Reply{State: f.state}, fmt.Errorf("unexpected input in state %s", f.state)
}

func (f *Flow) reject(err error) Reply {
	return Reply{Lines: []string{err.Error()}, State: f.state, Err: err}
}

func (f *Flow) answer(text string) Reply {
	if n := utf8.RuneCountInString(text); n < MinAnswerLength {
		return f.reject(&ShortAnswerError{Length: n})
	}

	f.answers = append(f.answers, text)
	if next := len(f.answers); next < len(f.questions) {
		return Reply{Lines: []string{f.questionLine(next)}, State: f.state}
	}

	f.state = AwaitingConfirmation
	lines := []string{"Thanks. Here is your claim:"}
	for i, q := range f.questions {
		lines = append(lines, fmt.Sprintf("%d. %s\n   %s", i+1, q, f.answers[i]))
	}
	lines = append(lines, confirmPrompt)
	return Reply{Lines: lines, State: f.state}
}

func (f *Flow) confirm(ctx context.Context, text string) (Reply, error) {
	switch strings.ToLower(text) {
	case "yes", "y":
	case "no", "n":
		f.state = Cancelled
		return Reply{Lines: []string{"Claim cancelled."}, State: f.state}, nil
	default:
		return Reply{Lines: []string{confirmPrompt}, State: f.state}, nil
	}

	f.state = Submitting
	claim, err := f.submitter.SubmitClaim(ctx, f.Submission())
	if err != nil {
		f.state = AwaitingConfirmation
		return Reply{
			Lines: []string{
				fmt.Sprintf("Submitting failed: %v", err),
				confirmPrompt,
			},
			State: f.state,
		}, err
	}

	f.state = Submitted
	f.claim = claim
	lines := []string{"Your claim has been submitted and is waiting for admin review."}
	if claim != nil && claim.AIAnalysis != nil && claim.AIAnalysis.ConfidenceBand != "" {
		lines = append(lines, fmt.Sprintf("Preliminary confidence: %s.", claim.AIAnalysis.ConfidenceBand))
	}
	return Reply{Lines: lines, State: f.state}, nil
}

// Submission builds the claim payload from the collected answers.
func (f *Flow) Submission() Submission {
	qa := make([]model.QAPair, len(f.answers))
	for i, a := range f.answers {
		qa[i] = model.QAPair{Question: f.questions[i], Answer: a}
	}

	productType := f.item.ItemKeyword
	if productType == "" {
		productType = "Unknown"
	}

	s := Submission{
		ItemID:          f.item.ID,
		ProductType:     productType,
		ApproximateDate: "Recently",
		QAData:          qa,
		MatchPercentage: similarity.Score(
			strings.Join(f.answers, " "),
			f.item.SecretMessage+" "+f.item.Description,
		),
	}
	if len(f.answers) > 0 {
		s.Description = f.answers[0]
	}
	if len(f.answers) > 1 {
		s.IdentificationMarks = f.answers[1]
	}
	if len(f.answers) > 2 {
		s.LostLocation = f.answers[2]
	}
	return s
}
