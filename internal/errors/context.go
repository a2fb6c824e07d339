// Package errors provides enhanced error handling with context.
package errors

import (
	"context"
)

func extractUserID(ctx context.Context) string {
	if val := ctx.Value(contextKey{"userID"}); val != nil {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

type contextKey struct {
	name string
}

// WithUserID returns a context carrying userID, retrievable by
// extractUserID (and therefore by every error-construction path in this
// package that enriches an error with the acting user). internal/authn
// calls this from its verification middleware so the same key type is
// used on both the write and the read side.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{"userID"}, userID)
}

// UserIDFromContext is the exported counterpart of extractUserID for
// callers outside this package (e.g. internal/api handlers resolving the
// acting user for an authorization check).
func UserIDFromContext(ctx context.Context) (string, bool) {
	id := extractUserID(ctx)
	return id, id != ""
}