package voting

import (
	"context"

	"ballot-box/pkg/core/model"
)

type contextKey struct{}

var currentUserKey contextKey

// WithCurrentUser attaches the resolved request identity to the context.
func WithCurrentUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// CurrentUser returns the identity resolved for this request, or nil when the
// request is anonymous.
func CurrentUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(currentUserKey).(*model.User)
	return user
}
