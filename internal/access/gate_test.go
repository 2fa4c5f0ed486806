package access_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/edulingo/practice-engine/internal/access"
	"github.com/edulingo/practice-engine/internal/practice"
)

type fakeStore struct {
	categories map[string]access.Category // keyed by lowercase name
	byCategory map[string][]string        // categoryID -> course ids
	enrolled   map[string][]string        // userID -> course ids

	courseErr error
	enrollErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		categories: map[string]access.Category{},
		byCategory: map[string][]string{},
		enrolled:   map[string][]string{},
	}
}

func (s *fakeStore) addCategory(id, name string, courseIDs ...string) {
	s.categories[strings.ToLower(name)] = access.Category{ID: id, Name: name}
	s.byCategory[id] = courseIDs
}

func (s *fakeStore) CategoryByName(_ context.Context, name string) (access.Category, error) {
	c, ok := s.categories[strings.ToLower(name)]
	if !ok {
		return access.Category{}, practice.ErrNotFound
	}
	return c, nil
}

func (s *fakeStore) CourseIDsByCategory(_ context.Context, categoryID string) ([]string, error) {
	if s.courseErr != nil {
		return nil, s.courseErr
	}
	return s.byCategory[categoryID], nil
}

func (s *fakeStore) EnrolledCourseIDs(_ context.Context, userID string) ([]string, error) {
	if s.enrollErr != nil {
		return nil, s.enrollErr
	}
	return s.enrolled[userID], nil
}

func seededStore() *fakeStore {
	s := newFakeStore()
	s.addCategory("cat-1", "TOEIC", "course-1", "course-2")
	s.addCategory("cat-2", "IELTS", "course-3")
	s.enrolled["u1"] = []string{"course-2", "course-9"}
	return s
}

func TestCheckAccess_EnrollmentGrantsCategory(t *testing.T) {
	gate := access.NewGate(seededStore())
	p := &practice.Principal{ID: "u1", Role: "student"}

	// case-insensitive category resolution
	got, err := gate.CheckAccess(context.Background(), p, "toeic")
	if err != nil {
		t.Fatalf("CheckAccess: %v", err)
	}
	if !got.HasAccess || got.Category.ID != "cat-1" {
		t.Fatalf("got %+v, want access to cat-1", got)
	}

	// no enrollment under IELTS
	got, err = gate.CheckAccess(context.Background(), p, "IELTS")
	if err != nil {
		t.Fatalf("CheckAccess: %v", err)
	}
	if got.HasAccess {
		t.Fatal("u1 must not have IELTS access")
	}
}

func TestCheckAccess_AdminBypassesEnrollment(t *testing.T) {
	s := seededStore()
	s.enrollErr = errors.New("should not be queried")
	gate := access.NewGate(s)

	got, err := gate.CheckAccess(context.Background(), &practice.Principal{ID: "root", Role: "admin"}, "IELTS")
	if err != nil {
		t.Fatalf("CheckAccess: %v", err)
	}
	if !got.HasAccess {
		t.Fatal("admin must always have access")
	}
}

func TestCheckAccess_NilPrincipal(t *testing.T) {
	gate := access.NewGate(seededStore())
	_, err := gate.CheckAccess(context.Background(), nil, "TOEIC")
	if !errors.Is(err, practice.ErrRequiresAuth) {
		t.Fatalf("err = %v, want ErrRequiresAuth", err)
	}
}

func TestCheckAccess_UnknownCategory(t *testing.T) {
	gate := access.NewGate(seededStore())
	_, err := gate.CheckAccess(context.Background(), &practice.Principal{ID: "u1"}, "HSK")
	if !errors.Is(err, practice.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCheckAccess_FailsClosedOnStoreError(t *testing.T) {
	p := &practice.Principal{ID: "u1", Role: "student"}
	for name, mutate := range map[string]func(*fakeStore){
		"course lookup fails":     func(s *fakeStore) { s.courseErr = errors.New("db down") },
		"enrollment lookup fails": func(s *fakeStore) { s.enrollErr = errors.New("db down") },
	} {
		t.Run(name, func(t *testing.T) {
			s := seededStore()
			mutate(s)
			got, err := access.NewGate(s).CheckAccess(context.Background(), p, "TOEIC")
			if err == nil {
				t.Fatal("want error, got none")
			}
			if got.HasAccess {
				t.Fatal("access granted on store failure")
			}
		})
	}
}

func TestCheckTestAccess(t *testing.T) {
	gate := access.NewGate(seededStore())
	ctx := context.Background()
	student := &practice.Principal{ID: "u1", Role: "student"}
	outsider := &practice.Principal{ID: "u2", Role: "student"}

	paid := practice.Test{ID: "t1", CategoryID: "cat-1", IsActive: true}
	free := practice.Test{ID: "t2", CategoryID: "cat-1", IsActive: true, IsFree: true}
	uncategorized := practice.Test{ID: "t3", IsActive: true}

	if err := gate.CheckTestAccess(ctx, nil, free); !errors.Is(err, practice.ErrRequiresAuth) {
		t.Fatalf("nil principal: err = %v, want ErrRequiresAuth", err)
	}
	if err := gate.CheckTestAccess(ctx, student, paid); err != nil {
		t.Fatalf("enrolled student on paid test: %v", err)
	}
	if err := gate.CheckTestAccess(ctx, outsider, paid); !errors.Is(err, practice.ErrForbidden) {
		t.Fatalf("outsider on paid test: err = %v, want ErrForbidden", err)
	}
	if err := gate.CheckTestAccess(ctx, outsider, free); err != nil {
		t.Fatalf("outsider on free test: %v", err)
	}
	if err := gate.CheckTestAccess(ctx, outsider, uncategorized); err != nil {
		t.Fatalf("outsider on uncategorized test: %v", err)
	}
	if err := gate.CheckTestAccess(ctx, &practice.Principal{ID: "root", Role: "admin"}, paid); err != nil {
		t.Fatalf("admin on paid test: %v", err)
	}
}
