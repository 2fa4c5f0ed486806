package practice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edulingo/practice-engine/internal/grading"
)

// Service orchestrates the attempt flow: authorize, fetch, grade, persist.
// It holds no state between the fetch-questions and submit-answers round
// trips; everything is recomputed from the store on submit.
type Service struct {
	store Store
	gate  AccessGate
	now   func() time.Time
	newID func() string
}

func NewService(store Store, gate AccessGate) *Service {
	return &Service{
		store: store,
		gate:  gate,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// ListTests is the permissive listing. Anonymous callers see free active
// tests only; category-scoped listings drop the free-only restriction
// because attempting, not listing, is the enforcement point.
func (s *Service) ListTests(ctx context.Context, p *Principal, categoryID string) ([]TestSummary, error) {
	opts := ListOpts{ActiveOnly: true, CategoryID: categoryID}
	if p == nil && categoryID == "" {
		opts.FreeOnly = true
	}
	return s.store.ListTests(ctx, opts)
}

// BeginAttempt authorizes the principal and returns the test with its
// question list expanded, answer keys stripped.
func (s *Service) BeginAttempt(ctx context.Context, p *Principal, testID string) (AttemptView, error) {
	t, bank, err := s.fetchForAttempt(ctx, p, testID)
	if err != nil {
		return AttemptView{}, err
	}
	view := AttemptView{Test: t, Questions: make([]AttemptQuestion, 0, len(t.QuestionIDs))}
	for _, qid := range t.QuestionIDs {
		if q, ok := bank[qid]; ok {
			view.Questions = append(view.Questions, attemptQuestion(q))
		}
	}
	return view, nil
}

// SubmitAttempt re-fetches the test server-side (never trusting the client's
// copy of the question set), grades the submission and persists exactly one
// new result record. Re-attempts are unlimited; every submission gets its
// own independent record.
func (s *Service) SubmitAttempt(ctx context.Context, p *Principal, testID string, submission map[string]string) (Result, error) {
	t, bank, err := s.fetchForAttempt(ctx, p, testID)
	if err != nil {
		return Result{}, err
	}
	gbank := make(map[string]grading.Q, len(bank))
	for id, q := range bank {
		gbank[id] = grading.Q{ID: id, Options: q.Options}
	}
	graded := grading.Grade(grading.Input{
		QuestionIDs:  t.QuestionIDs,
		Bank:         gbank,
		Submission:   submission,
		TotalScore:   t.TotalScore,
		PassingScore: t.PassingScore,
	})
	r := Result{
		ID:             s.newID(),
		UserID:         p.ID,
		TestID:         t.ID,
		Score:          graded.Score,
		CorrectAnswers: graded.CorrectAnswers,
		TotalQuestions: graded.TotalQuestions,
		Answers:        graded.Answers,
		IsPassed:       graded.IsPassed,
		CompletedAt:    s.now().UTC(),
	}
	if err := s.store.PutResult(ctx, r); err != nil {
		return Result{}, err
	}
	return r, nil
}

// GetResult returns a result record, owner-only. A mismatch is Forbidden,
// not NotFound; admins may view any record.
func (s *Service) GetResult(ctx context.Context, p *Principal, resultID string) (Result, error) {
	if p == nil {
		return Result{}, ErrRequiresAuth
	}
	r, err := s.store.GetResult(ctx, resultID)
	if err != nil {
		return Result{}, err
	}
	if r.UserID != p.ID && !p.IsAdmin() {
		return Result{}, fmt.Errorf("result %s: %w", resultID, ErrForbidden)
	}
	return r, nil
}

// ReviewResult is GetResult plus the full questions (answer keys and
// explanations included) for the review page. Keys are only ever exposed
// here, after submission.
func (s *Service) ReviewResult(ctx context.Context, p *Principal, resultID string) (ResultReview, error) {
	r, err := s.GetResult(ctx, p, resultID)
	if err != nil {
		return ResultReview{}, err
	}
	ids := make([]string, 0, len(r.Answers))
	for _, a := range r.Answers {
		ids = append(ids, a.QuestionID)
	}
	bank, err := s.store.GetQuestionsByID(ctx, ids)
	if err != nil {
		return ResultReview{}, err
	}
	review := ResultReview{Result: r, Questions: make([]Question, 0, len(ids))}
	for _, id := range ids {
		if q, ok := bank[id]; ok {
			review.Questions = append(review.Questions, q)
		}
	}
	return review, nil
}

// ListMyResults returns the principal's own records, newest first.
func (s *Service) ListMyResults(ctx context.Context, p *Principal) ([]Result, error) {
	if p == nil {
		return nil, ErrRequiresAuth
	}
	return s.store.ListResultsByUser(ctx, p.ID)
}

// fetchForAttempt is the shared authorize-and-load path for BeginAttempt
// and SubmitAttempt.
func (s *Service) fetchForAttempt(ctx context.Context, p *Principal, testID string) (Test, map[string]Question, error) {
	if p == nil {
		return Test{}, nil, ErrRequiresAuth
	}
	t, err := s.store.GetTest(ctx, testID)
	if err != nil {
		return Test{}, nil, err
	}
	if !t.IsActive {
		return Test{}, nil, fmt.Errorf("test %s: %w", testID, ErrInactive)
	}
	if s.gate != nil {
		if err := s.gate.CheckTestAccess(ctx, p, t); err != nil {
			return Test{}, nil, err
		}
	}
	bank, err := s.store.GetQuestionsByID(ctx, t.QuestionIDs)
	if err != nil {
		return Test{}, nil, err
	}
	return t, bank, nil
}
