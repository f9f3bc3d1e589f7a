package actorctx

import (
	"context"
	"testing"

	"github.com/geocoder89/bootcamphub/internal/domain/user"
	"github.com/stretchr/testify/assert"
)

func TestPrincipalRoundTrip(t *testing.T) {
	_, ok := PrincipalFrom(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), user.User{ID: "u1", Role: user.RoleAdmin})

	u, ok := PrincipalFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, user.RoleAdmin, u.Role)

	_, ok = PrincipalFrom(WithPrincipal(context.Background(), user.User{}))
	assert.False(t, ok)
}
