package context

import "context"

// SystemActor is recorded when no caller identity is attached to the context.
const SystemActor = "system"

type actorKey struct{}

// WithActor attaches the identity of whoever triggered the operation.
// It is informational only and ends up in audit entries.
func WithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor returns the caller identity or SystemActor.
func GetActor(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok && v != "" {
		return v
	}
	return SystemActor
}
