package practice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/edulingo/practice-engine/internal/grading"
)

// SQLStore persists the question bank, test definitions and result records
// over database/sql (sqlite or postgres). Option lists, question-id lists
// and answer breakdowns are stored as JSON blobs.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutQuestion(ctx context.Context, q Question) error {
	if q.ID == "" || q.Content == "" {
		return fmt.Errorf("%w: question id and content required", ErrInvalid)
	}
	if q.Type == "" {
		q.Type = TypeMultipleChoice
	}
	if q.Level == "" {
		q.Level = LevelMedium
	}
	oj, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	tj, err := json.Marshal(q.Tags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO questions (id,content,options_json,explanation,qtype,level,audio_url,tags_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET content=EXCLUDED.content, options_json=EXCLUDED.options_json,
			explanation=EXCLUDED.explanation, qtype=EXCLUDED.qtype, level=EXCLUDED.level,
			audio_url=EXCLUDED.audio_url, tags_json=EXCLUDED.tags_json`,
		q.ID, q.Content, string(oj), q.Explanation, q.Type, q.Level, q.AudioURL, string(tj), time.Now().Unix())
	return err
}

func (s *SQLStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,content,options_json,explanation,qtype,level,audio_url,tags_json,created_at
		FROM questions WHERE id=$1`, id)
	return scanQuestion(row)
}

func (s *SQLStore) GetQuestionsByID(ctx context.Context, ids []string) (map[string]Question, error) {
	out := make(map[string]Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,content,options_json,explanation,qtype,level,audio_url,tags_json,created_at
		FROM questions WHERE id IN (`+strings.Join(ph, ",")+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out[q.ID] = q
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) PutTest(ctx context.Context, t Test) error {
	if t.ID == "" || t.Title == "" {
		return fmt.Errorf("%w: test id and title required", ErrInvalid)
	}
	if t.TotalScore == 0 {
		t.TotalScore = 100
	}
	if t.PassingScore > t.TotalScore {
		return fmt.Errorf("%w: passing score %d exceeds total score %d", ErrInvalid, t.PassingScore, t.TotalScore)
	}
	qj, err := json.Marshal(t.QuestionIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO tests (id,title,description,category_id,question_ids_json,duration_min,total_score,passing_score,is_active,is_free,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
			category_id=EXCLUDED.category_id, question_ids_json=EXCLUDED.question_ids_json,
			duration_min=EXCLUDED.duration_min, total_score=EXCLUDED.total_score,
			passing_score=EXCLUDED.passing_score, is_active=EXCLUDED.is_active, is_free=EXCLUDED.is_free`,
		t.ID, t.Title, t.Description, t.CategoryID, string(qj), t.Duration, t.TotalScore,
		t.PassingScore, t.IsActive, t.IsFree, time.Now().Unix())
	return err
}

func (s *SQLStore) GetTest(ctx context.Context, id string) (Test, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,description,category_id,question_ids_json,duration_min,total_score,passing_score,is_active,is_free,created_at
		FROM tests WHERE id=$1`, id)
	var t Test
	var qjson string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.CategoryID, &qjson, &t.Duration,
		&t.TotalScore, &t.PassingScore, &t.IsActive, &t.IsFree, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Test{}, fmt.Errorf("test %s: %w", id, ErrNotFound)
		}
		return Test{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &t.QuestionIDs); err != nil {
		return Test{}, err
	}
	return t, nil
}

func (s *SQLStore) ListTests(ctx context.Context, opts ListOpts) ([]TestSummary, error) {
	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if opts.ActiveOnly {
		where = append(where, "is_active = "+arg(true))
	}
	if opts.FreeOnly {
		where = append(where, "is_free = "+arg(true))
	}
	if opts.CategoryID != "" {
		where = append(where, "category_id = "+arg(opts.CategoryID))
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT id,title,description,category_id,question_ids_json,duration_min,total_score,passing_score,is_free
		FROM tests WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at DESC, id LIMIT ` + arg(limit) + ` OFFSET ` + arg(opts.Offset)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TestSummary
	for rows.Next() {
		var ts TestSummary
		var qjson string
		if err := rows.Scan(&ts.ID, &ts.Title, &ts.Description, &ts.CategoryID, &qjson,
			&ts.Duration, &ts.TotalScore, &ts.PassingScore, &ts.IsFree); err != nil {
			return nil, err
		}
		var ids []string
		if err := json.Unmarshal([]byte(qjson), &ids); err == nil {
			ts.QuestionCount = len(ids)
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutResult(ctx context.Context, r Result) error {
	aj, err := json.Marshal(r.Answers)
	if err != nil {
		return err
	}
	// insert only: result records are immutable
	_, err = s.db.ExecContext(ctx, `INSERT INTO results (id,user_id,test_id,score,correct_answers,total_questions,answers_json,is_passed,completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		r.ID, r.UserID, r.TestID, r.Score, r.CorrectAnswers, r.TotalQuestions, string(aj),
		r.IsPassed, r.CompletedAt.Unix())
	return err
}

func (s *SQLStore) GetResult(ctx context.Context, id string) (Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,user_id,test_id,score,correct_answers,total_questions,answers_json,is_passed,completed_at
		FROM results WHERE id=$1`, id)
	r, err := scanResult(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, fmt.Errorf("result %s: %w", id, ErrNotFound)
		}
		return Result{}, err
	}
	return r, nil
}

func (s *SQLStore) ListResultsByUser(ctx context.Context, userID string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,user_id,test_id,score,correct_answers,total_questions,answers_json,is_passed,completed_at
		FROM results WHERE user_id=$1 ORDER BY completed_at DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (Question, error) {
	var q Question
	var ojson, tjson string
	err := row.Scan(&q.ID, &q.Content, &ojson, &q.Explanation, &q.Type, &q.Level, &q.AudioURL, &tjson, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, fmt.Errorf("question: %w", ErrNotFound)
		}
		return Question{}, err
	}
	if err := json.Unmarshal([]byte(ojson), &q.Options); err != nil {
		return Question{}, err
	}
	if err := json.Unmarshal([]byte(tjson), &q.Tags); err != nil {
		q.Tags = nil
	}
	return q, nil
}

func scanResult(row rowScanner) (Result, error) {
	var r Result
	var ajson string
	var completed int64
	err := row.Scan(&r.ID, &r.UserID, &r.TestID, &r.Score, &r.CorrectAnswers, &r.TotalQuestions,
		&ajson, &r.IsPassed, &completed)
	if err != nil {
		return Result{}, err
	}
	if err := json.Unmarshal([]byte(ajson), &r.Answers); err != nil {
		r.Answers = []grading.Answer{}
	}
	r.CompletedAt = time.Unix(completed, 0).UTC()
	return r, nil
}
