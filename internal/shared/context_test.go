package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActor(t *testing.T) {
	require.Equal(t, "admin:alex", Identity{Name: "alex", Admin: true}.Actor())
	require.Equal(t, "admin", Identity{Admin: true}.Actor())
	require.Equal(t, "alex", Identity{Name: "alex"}.Actor())
	// Anonymous callers must never collide with service-written "system"
	// notes.
	require.Equal(t, "user", Identity{}.Actor())
	require.NotEqual(t, "system", Identity{}.Actor())
}

func TestIdentityContextRoundTrip(t *testing.T) {
	ctx := ContextWithIdentity(context.Background(), Identity{Name: "alex", Admin: true})
	require.Equal(t, Identity{Name: "alex", Admin: true}, IdentityFromContext(ctx))

	require.Equal(t, Identity{}, IdentityFromContext(context.Background()))
}
