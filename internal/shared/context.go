package shared

import "context"

// Identity describes the acting caller for attribution purposes. The system
// distinguishes exactly one privilege level: admin or not.
type Identity struct {
	Name  string
	Admin bool
}

// Actor returns the attribution string used on notes and audit entries.
// Anonymous callers are attributed "user"; "system" is reserved for notes
// the service writes itself.
func (id Identity) Actor() string {
	if id.Admin {
		if id.Name != "" {
			return "admin:" + id.Name
		}
		return "admin"
	}
	if id.Name != "" {
		return id.Name
	}
	return "user"
}

type contextKey struct{ name string }

var identityKey = contextKey{"identity"}

// ContextWithIdentity attaches the caller identity to the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller identity, defaulting to an
// unprivileged anonymous one.
func IdentityFromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey).(Identity); ok {
		return id
	}
	return Identity{}
}
