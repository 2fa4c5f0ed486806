package practice_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/edulingo/practice-engine/internal/grading"
	"github.com/edulingo/practice-engine/internal/practice"
)

type fakeGate struct {
	err   error
	calls int
}

func (g *fakeGate) CheckTestAccess(_ context.Context, p *practice.Principal, _ practice.Test) error {
	g.calls++
	if p == nil {
		return practice.ErrRequiresAuth
	}
	return g.err
}

func seedEngine(t *testing.T) (practice.Store, *practice.Service, *fakeGate) {
	t.Helper()
	ctx := context.Background()
	store := practice.NewMemoryStore()
	gate := &fakeGate{}
	svc := practice.NewService(store, gate)

	questions := []practice.Question{
		{ID: "q1", Content: "Capital of France?", Options: []grading.Option{
			{Text: "Paris", IsCorrect: true}, {Text: "London"},
		}, Explanation: "Paris has been the capital since 508."},
		{ID: "q2", Content: "2+2?", Options: []grading.Option{
			{Text: "4", IsCorrect: true}, {Text: "5"},
		}},
		{ID: "q3", Content: "Language of this repo?", Options: []grading.Option{
			{Text: "go", IsCorrect: true}, {Text: "rust"},
		}},
		{ID: "q4", Content: "Sky color?", Options: []grading.Option{
			{Text: "blue", IsCorrect: true}, {Text: "red"},
		}},
	}
	for _, q := range questions {
		if err := store.PutQuestion(ctx, q); err != nil {
			t.Fatalf("PutQuestion: %v", err)
		}
	}
	if err := store.PutTest(ctx, practice.Test{
		ID: "t1", Title: "TOEIC warmup", CategoryID: "cat-1",
		QuestionIDs: []string{"q1", "q2", "q3", "q4"},
		Duration:    30, TotalScore: 100, PassingScore: 50,
		IsActive: true, IsFree: true,
	}); err != nil {
		t.Fatalf("PutTest: %v", err)
	}
	return store, svc, gate
}

func TestBeginAttempt_StripsAnswerKeys(t *testing.T) {
	_, svc, _ := seedEngine(t)
	p := &practice.Principal{ID: "u1", Role: "student"}

	view, err := svc.BeginAttempt(context.Background(), p, "t1")
	if err != nil {
		t.Fatalf("BeginAttempt: %v", err)
	}
	if len(view.Questions) != 4 {
		t.Fatalf("questions=%d, want 4", len(view.Questions))
	}
	if view.Questions[0].ID != "q1" || view.Questions[3].ID != "q4" {
		t.Fatal("question order not preserved")
	}
	buf, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	payload := string(buf)
	if strings.Contains(payload, "isCorrect") || strings.Contains(payload, "explanation") {
		t.Fatalf("attempt payload leaks answer key material: %s", payload)
	}
}

func TestBeginAttempt_Failures(t *testing.T) {
	_, svc, gate := seedEngine(t)
	ctx := context.Background()
	p := &practice.Principal{ID: "u1", Role: "student"}

	if _, err := svc.BeginAttempt(ctx, nil, "t1"); !errors.Is(err, practice.ErrRequiresAuth) {
		t.Fatalf("anonymous: err = %v, want ErrRequiresAuth", err)
	}
	if _, err := svc.BeginAttempt(ctx, p, "nope"); !errors.Is(err, practice.ErrNotFound) {
		t.Fatalf("unknown test: err = %v, want ErrNotFound", err)
	}

	store, svc2, _ := seedEngine(t)
	_ = store.PutTest(ctx, practice.Test{ID: "t2", Title: "retired", QuestionIDs: []string{"q1"}, IsActive: false})
	if _, err := svc2.BeginAttempt(ctx, p, "t2"); !errors.Is(err, practice.ErrInactive) {
		t.Fatalf("inactive test: err = %v, want ErrInactive", err)
	}

	gate.err = practice.ErrForbidden
	if _, err := svc.BeginAttempt(ctx, p, "t1"); !errors.Is(err, practice.ErrForbidden) {
		t.Fatalf("gated test: err = %v, want ErrForbidden", err)
	}
}

func TestSubmitAttempt_PersistsOneRecordPerSubmission(t *testing.T) {
	store, svc, _ := seedEngine(t)
	ctx := context.Background()
	p := &practice.Principal{ID: "u1", Role: "student"}

	first, err := svc.SubmitAttempt(ctx, p, "t1", map[string]string{"q1": "Paris", "q2": "4"})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if first.Score != 50 || !first.IsPassed || first.CorrectAnswers != 2 || first.TotalQuestions != 4 {
		t.Fatalf("first result = %+v", first)
	}
	if first.UserID != "u1" || first.TestID != "t1" || first.ID == "" {
		t.Fatalf("record identity wrong: %+v", first)
	}
	if len(first.Answers) != 4 {
		t.Fatalf("answers=%d, want entry per question", len(first.Answers))
	}
	if a := first.Answers[2]; a.SelectedOption != nil || a.IsCorrect {
		t.Fatalf("unanswered q3 entry = %+v", a)
	}

	// second attempt is an independent record, not an update
	second, err := svc.SubmitAttempt(ctx, p, "t1", map[string]string{"q1": "Paris"})
	if err != nil {
		t.Fatalf("re-attempt: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("re-attempt reused the result id")
	}
	if second.Score != 25 || second.IsPassed {
		t.Fatalf("second result = %+v", second)
	}
	all, err := store.ListResultsByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListResultsByUser: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("records=%d, want 2", len(all))
	}
}

func TestGetResult_Ownership(t *testing.T) {
	_, svc, _ := seedEngine(t)
	ctx := context.Background()
	owner := &practice.Principal{ID: "u1", Role: "student"}

	res, err := svc.SubmitAttempt(ctx, owner, "t1", map[string]string{"q1": "Paris"})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}

	if _, err := svc.GetResult(ctx, owner, res.ID); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if _, err := svc.GetResult(ctx, &practice.Principal{ID: "u2", Role: "student"}, res.ID); !errors.Is(err, practice.ErrForbidden) {
		t.Fatalf("stranger read: err = %v, want ErrForbidden", err)
	}
	if _, err := svc.GetResult(ctx, &practice.Principal{ID: "root", Role: "admin"}, res.ID); err != nil {
		t.Fatalf("admin read: %v", err)
	}
	if _, err := svc.GetResult(ctx, nil, res.ID); !errors.Is(err, practice.ErrRequiresAuth) {
		t.Fatalf("anonymous read: err = %v, want ErrRequiresAuth", err)
	}
	if _, err := svc.GetResult(ctx, owner, "missing"); !errors.Is(err, practice.ErrNotFound) {
		t.Fatalf("missing record: err = %v, want ErrNotFound", err)
	}
}

func TestReviewResult_IncludesAnswerKeys(t *testing.T) {
	_, svc, _ := seedEngine(t)
	ctx := context.Background()
	p := &practice.Principal{ID: "u1", Role: "student"}

	res, err := svc.SubmitAttempt(ctx, p, "t1", map[string]string{"q1": "London"})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	review, err := svc.ReviewResult(ctx, p, res.ID)
	if err != nil {
		t.Fatalf("ReviewResult: %v", err)
	}
	if len(review.Questions) != 4 {
		t.Fatalf("review questions=%d, want 4", len(review.Questions))
	}
	key, ok := grading.CorrectOption(review.Questions[0].Options)
	if !ok || key.Text != "Paris" {
		t.Fatal("review must expose the answer key")
	}
	if review.Questions[0].Explanation == "" {
		t.Fatal("review must include explanations")
	}
}

func TestListTests_Visibility(t *testing.T) {
	store, svc, _ := seedEngine(t)
	ctx := context.Background()
	// one paid active, one inactive
	_ = store.PutTest(ctx, practice.Test{ID: "t-paid", Title: "paid", CategoryID: "cat-1",
		QuestionIDs: []string{"q1"}, IsActive: true, IsFree: false})
	_ = store.PutTest(ctx, practice.Test{ID: "t-off", Title: "off", CategoryID: "cat-1",
		QuestionIDs: []string{"q1"}, IsActive: false, IsFree: true})

	anon, err := svc.ListTests(ctx, nil, "")
	if err != nil {
		t.Fatalf("anonymous listing: %v", err)
	}
	if got := ids(anon); len(got) != 1 || got[0] != "t1" {
		t.Fatalf("anonymous sees %v, want only free active t1", got)
	}

	authed, err := svc.ListTests(ctx, &practice.Principal{ID: "u1", Role: "student"}, "")
	if err != nil {
		t.Fatalf("authed listing: %v", err)
	}
	if got := ids(authed); len(got) != 2 {
		t.Fatalf("authed sees %v, want t1 and t-paid", got)
	}

	// category-scoped includes paid even anonymously; attempt is the gate
	scoped, err := svc.ListTests(ctx, nil, "cat-1")
	if err != nil {
		t.Fatalf("category listing: %v", err)
	}
	if got := ids(scoped); len(got) != 2 {
		t.Fatalf("category listing sees %v, want active tests incl. paid", got)
	}
}

func ids(list []practice.TestSummary) []string {
	out := make([]string, 0, len(list))
	for _, ts := range list {
		out = append(out, ts.ID)
	}
	return out
}
