package auth

import (
	"context"

	"github.com/edulingo/practice-engine/internal/practice"
	"github.com/edulingo/practice-engine/internal/rbac"
)

type ctxKey string

const ctxKeySub ctxKey = "sub"

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySub, sub)
}

func SubjectFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeySub); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// PrincipalFromContext builds the current principal, or nil when the request
// is anonymous.
func PrincipalFromContext(ctx context.Context) *practice.Principal {
	sub := SubjectFromContext(ctx)
	if sub == "" {
		return nil
	}
	return &practice.Principal{ID: sub, Role: rbac.RoleFromContext(ctx)}
}
