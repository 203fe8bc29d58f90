package shared

import "context"

// Actor identifies the authenticated caller and the firm its requests are
// scoped to. Handlers resolve it once; services trust it.
type Actor struct {
	FirmID   int64
	Username string
}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context. The second return value
// is false when no actor was resolved for this request.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
