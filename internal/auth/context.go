package auth

import (
	"context"

	"orderdesk.dev/internal/authz"
)

type subjectContextKey struct{}

// ContextWithSubject attaches the resolved subject to the context.
func ContextWithSubject(ctx context.Context, subject authz.Subject) context.Context {
	return context.WithValue(ctx, subjectContextKey{}, subject)
}

// SubjectFromContext extracts the subject attached by the request layer.
func SubjectFromContext(ctx context.Context) (authz.Subject, bool) {
	if ctx == nil {
		return authz.Subject{}, false
	}
	s, ok := ctx.Value(subjectContextKey{}).(authz.Subject)
	if !ok || s.ID == "" {
		return authz.Subject{}, false
	}
	return s, true
}
