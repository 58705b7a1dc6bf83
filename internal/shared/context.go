package shared

import (
	"context"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of a request.
type Actor struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
