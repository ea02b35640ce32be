package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type actorKey struct{}

// Actor identifies the authenticated caller for a request. Role is one of
// superadmin, admin, or partner_admin for human callers; robot callers are
// authenticated by API key and carry no actor.
type Actor struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Role           string
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func GetActor(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
