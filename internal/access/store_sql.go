package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/edulingo/practice-engine/internal/practice"
)

// Course is a purchasable unit of content under a category. Enrollment in
// any course of a category unlocks that category's paid tests.
type Course struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	CategoryID string  `json:"category"`
	Price      float64 `json:"price"`
	IsActive   bool    `json:"isActive"`
}

// SQLStore backs the gate with the categories/courses/enrollments tables.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) CategoryByName(ctx context.Context, name string) (Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,name FROM categories WHERE LOWER(name)=LOWER($1)`, name)
	var c Category
	if err := row.Scan(&c.ID, &c.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Category{}, fmt.Errorf("category %q: %w", name, practice.ErrNotFound)
		}
		return Category{}, err
	}
	return c, nil
}

func (s *SQLStore) CourseIDsByCategory(ctx context.Context, categoryID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM courses WHERE category_id=$1`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *SQLStore) EnrolledCourseIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT course_id FROM enrollments WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// PutCategory upserts a category (content management).
func (s *SQLStore) PutCategory(ctx context.Context, c Category) error {
	if c.ID == "" || c.Name == "" {
		return fmt.Errorf("%w: category id and name required", practice.ErrInvalid)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO categories (id,name) VALUES ($1,$2)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name`, c.ID, c.Name)
	return err
}

// PutCourse upserts a course under a category.
func (s *SQLStore) PutCourse(ctx context.Context, c Course) error {
	if c.ID == "" || c.Title == "" || c.CategoryID == "" {
		return fmt.Errorf("%w: course id, title and category required", practice.ErrInvalid)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO courses (id,title,category_id,price,is_active)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, category_id=EXCLUDED.category_id,
			price=EXCLUDED.price, is_active=EXCLUDED.is_active`,
		c.ID, c.Title, c.CategoryID, c.Price, c.IsActive)
	return err
}

// Enroll records a user's enrollment in a course. Idempotent.
func (s *SQLStore) Enroll(ctx context.Context, userID, courseID string) error {
	var exist int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM courses WHERE id=$1`, courseID).Scan(&exist)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("course %s: %w", courseID, practice.ErrNotFound)
		}
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO enrollments (user_id,course_id,created_at)
		VALUES ($1,$2,$3) ON CONFLICT (user_id,course_id) DO NOTHING`,
		userID, courseID, time.Now().Unix())
	return err
}
