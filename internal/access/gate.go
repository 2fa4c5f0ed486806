// Package access decides whether a principal may work with category-gated
// content. Access to a category is granted to privileged roles outright,
// otherwise to anyone enrolled in at least one course under the category.
package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/edulingo/practice-engine/internal/practice"
)

// Category groups courses and tests and is the unit of access control.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryAccess is the outcome of a category check.
type CategoryAccess struct {
	Category  Category `json:"category"`
	HasAccess bool     `json:"hasAccess"`
}

// Store is the read/write surface the gate needs. Lookup errors propagate
// unchanged: the gate never grants on a failed read.
type Store interface {
	// CategoryByName resolves a human-readable identifier, case-insensitive.
	CategoryByName(ctx context.Context, name string) (Category, error)
	CourseIDsByCategory(ctx context.Context, categoryID string) ([]string, error)
	EnrolledCourseIDs(ctx context.Context, userID string) ([]string, error)
}

type Gate struct {
	store Store
}

func NewGate(store Store) *Gate { return &Gate{store: store} }

// CheckAccess resolves a category by name and reports whether the principal
// may use it. A nil principal is a distinct outcome (authenticate first),
// not hasAccess=false.
func (g *Gate) CheckAccess(ctx context.Context, p *practice.Principal, categoryName string) (CategoryAccess, error) {
	cat, err := g.store.CategoryByName(ctx, categoryName)
	if err != nil {
		return CategoryAccess{}, err
	}
	if p == nil {
		return CategoryAccess{}, practice.ErrRequiresAuth
	}
	if p.IsAdmin() {
		return CategoryAccess{Category: cat, HasAccess: true}, nil
	}
	ok, err := g.enrolledInCategory(ctx, p.ID, cat.ID)
	if err != nil {
		return CategoryAccess{}, err
	}
	return CategoryAccess{Category: cat, HasAccess: ok}, nil
}

// CheckTestAccess gates a single attempt. Free tests and tests without a
// category are open to any authenticated principal; otherwise category
// enrollment is required. Satisfies practice.AccessGate.
func (g *Gate) CheckTestAccess(ctx context.Context, p *practice.Principal, t practice.Test) error {
	if p == nil {
		return practice.ErrRequiresAuth
	}
	if t.IsFree || t.CategoryID == "" || p.IsAdmin() {
		return nil
	}
	ok, err := g.enrolledInCategory(ctx, p.ID, t.CategoryID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("test %s: %w", t.ID, practice.ErrForbidden)
	}
	return nil
}

func (g *Gate) enrolledInCategory(ctx context.Context, userID, categoryID string) (bool, error) {
	courseIDs, err := g.store.CourseIDsByCategory(ctx, categoryID)
	if err != nil {
		return false, err
	}
	enrolled, err := g.store.EnrolledCourseIDs(ctx, userID)
	if err != nil {
		return false, err
	}
	// compare as canonical strings; stored references may differ in shape
	in := make(map[string]struct{}, len(courseIDs))
	for _, id := range courseIDs {
		in[canonical(id)] = struct{}{}
	}
	for _, id := range enrolled {
		if _, ok := in[canonical(id)]; ok {
			return true, nil
		}
	}
	return false, nil
}

func canonical(id string) string { return strings.TrimSpace(id) }
