package practice

import "context"

// ListOpts filters test listings. ActiveOnly is set by every public listing;
// FreeOnly only by the anonymous one. Paid tests stay visible to enrolled
// viewers at listing time; enforcement happens at attempt time.
type ListOpts struct {
	CategoryID string
	ActiveOnly bool
	FreeOnly   bool
	Limit      int
	Offset     int
}

// Store is the persistence boundary for the practice-test engine. Results
// are append-only: there is deliberately no update or delete for them.
type Store interface {
	PutQuestion(ctx context.Context, q Question) error
	GetQuestion(ctx context.Context, id string) (Question, error)
	// GetQuestionsByID returns the bank entries that still exist; callers
	// must tolerate missing ids (questions deleted while referenced).
	GetQuestionsByID(ctx context.Context, ids []string) (map[string]Question, error)
	DeleteQuestion(ctx context.Context, id string) error

	PutTest(ctx context.Context, t Test) error
	GetTest(ctx context.Context, id string) (Test, error)
	ListTests(ctx context.Context, opts ListOpts) ([]TestSummary, error)

	PutResult(ctx context.Context, r Result) error
	GetResult(ctx context.Context, id string) (Result, error)
	ListResultsByUser(ctx context.Context, userID string) ([]Result, error)
}

// AccessGate authorizes an attempt on a test. Implemented by internal/access;
// kept as an interface here so grading and orchestration stay testable with
// fakes.
type AccessGate interface {
	CheckTestAccess(ctx context.Context, p *Principal, t Test) error
}
