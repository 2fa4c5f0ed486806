package practice

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// memoryStore is a Store for dev and tests. Semantics mirror SQLStore.
type memoryStore struct {
	mu        sync.RWMutex
	questions map[string]Question
	tests     map[string]Test
	results   map[string]Result
	seq       int64 // preserves insertion order for listings
	order     map[string]int64
}

func NewMemoryStore() Store {
	return &memoryStore{
		questions: map[string]Question{},
		tests:     map[string]Test{},
		results:   map[string]Result{},
		order:     map[string]int64{},
	}
}

func (m *memoryStore) PutQuestion(_ context.Context, q Question) error {
	if q.ID == "" || q.Content == "" {
		return fmt.Errorf("%w: question id and content required", ErrInvalid)
	}
	if q.Type == "" {
		q.Type = TypeMultipleChoice
	}
	if q.Level == "" {
		q.Level = LevelMedium
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[q.ID] = q
	return nil
}

func (m *memoryStore) GetQuestion(_ context.Context, id string) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.questions[id]
	if !ok {
		return Question{}, fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	return q, nil
}

func (m *memoryStore) GetQuestionsByID(_ context.Context, ids []string) (map[string]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Question, len(ids))
	for _, id := range ids {
		if q, ok := m.questions[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

func (m *memoryStore) DeleteQuestion(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[id]; !ok {
		return fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	delete(m.questions, id)
	return nil
}

func (m *memoryStore) PutTest(_ context.Context, t Test) error {
	if t.ID == "" || t.Title == "" {
		return fmt.Errorf("%w: test id and title required", ErrInvalid)
	}
	if t.TotalScore == 0 {
		t.TotalScore = 100
	}
	if t.PassingScore > t.TotalScore {
		return fmt.Errorf("%w: passing score %d exceeds total score %d", ErrInvalid, t.PassingScore, t.TotalScore)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[t.ID]; !ok {
		m.seq++
		m.order[t.ID] = m.seq
	}
	m.tests[t.ID] = t
	return nil
}

func (m *memoryStore) GetTest(_ context.Context, id string) (Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tests[id]
	if !ok {
		return Test{}, fmt.Errorf("test %s: %w", id, ErrNotFound)
	}
	return t, nil
}

func (m *memoryStore) ListTests(_ context.Context, opts ListOpts) ([]TestSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ts []Test
	for _, t := range m.tests {
		if opts.ActiveOnly && !t.IsActive {
			continue
		}
		if opts.FreeOnly && !t.IsFree {
			continue
		}
		if opts.CategoryID != "" && t.CategoryID != opts.CategoryID {
			continue
		}
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool { return m.order[ts[i].ID] > m.order[ts[j].ID] })
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	var out []TestSummary
	for i, t := range ts {
		if i < opts.Offset {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, TestSummary{
			ID:            t.ID,
			Title:         t.Title,
			Description:   t.Description,
			CategoryID:    t.CategoryID,
			Duration:      t.Duration,
			TotalScore:    t.TotalScore,
			PassingScore:  t.PassingScore,
			IsFree:        t.IsFree,
			QuestionCount: len(t.QuestionIDs),
		})
	}
	return out, nil
}

func (m *memoryStore) PutResult(_ context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.results[r.ID]; ok {
		return fmt.Errorf("result %s already exists", r.ID)
	}
	m.results[r.ID] = r
	return nil
}

func (m *memoryStore) GetResult(_ context.Context, id string) (Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[id]
	if !ok {
		return Result{}, fmt.Errorf("result %s: %w", id, ErrNotFound)
	}
	return r, nil
}

func (m *memoryStore) ListResultsByUser(_ context.Context, userID string) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Result
	for _, r := range m.results {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}
