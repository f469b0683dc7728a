package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type callerKey struct{}

// Caller is the authenticated identity behind a request. Services take it as an
// explicit argument; the context copy only exists so middleware and the
// request logger can find it.
type Caller struct {
	UserID    uuid.UUID
	Role      string
	SessionID uuid.UUID
	IPAddress string
	UserAgent string
	// ActiveOrganizationID is the workspace last selected on this session.
	ActiveOrganizationID *uuid.UUID
}

// Authenticated reports whether c identifies a user.
func (c *Caller) Authenticated() bool {
	return c != nil && c.UserID != uuid.Nil
}

func WithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

func GetCaller(ctx context.Context) *Caller {
	if ctx == nil {
		return nil
	}
	if c, ok := ctx.Value(callerKey{}).(*Caller); ok {
		return c
	}
	return nil
}
