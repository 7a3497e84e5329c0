package accounts

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
)

func TestClaimsFromContext(t *testing.T) {
	tests := []struct {
		name     string
		setupCtx func() context.Context
		wantOK   bool
	}{
		{
			name: "should return claims when present in context",
			setupCtx: func() context.Context {
				claims := &JWTClaims{
					RegisteredClaims: jwt.RegisteredClaims{
						Subject: "user123",
					},
					UID: "user123",
				}
				return WithClaims(context.Background(), claims)
			},
			wantOK: true,
		},
		{
			name: "should return false when no claims in context",
			setupCtx: func() context.Context {
				return context.Background()
			},
			wantOK: false,
		},
		{
			name: "should return false when context has wrong type",
			setupCtx: func() context.Context {
				return context.WithValue(context.Background(), claimsCtxKey, "not-a-claims-object")
			},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotClaims, gotOK := ClaimsFromContext(tt.setupCtx())

			assert.Equal(t, tt.wantOK, gotOK)
			if tt.wantOK {
				assert.NotNil(t, gotClaims)
				assert.Equal(t, "user123", gotClaims.Subject())
				assert.Equal(t, "user123", gotClaims.UserID())
			} else {
				assert.Nil(t, gotClaims)
			}
		})
	}
}

func TestUserFromContext(t *testing.T) {
	user := &User{Username: "alice", Email: "alice@example.com"}

	ctx := WithUser(context.Background(), user)
	got, ok := UserFromContext(ctx)
	assert.True(t, ok)
	assert.Same(t, user, got)

	got, ok = UserFromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestRouterUser(t *testing.T) {
	user := &User{Username: "alice"}

	t.Run("should return user stored in locals", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.LocalsMock["user"] = user

		got, ok := RouterUser(ctx, "")
		assert.True(t, ok)
		assert.Same(t, user, got)
	})

	t.Run("should honor a custom locals key", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.LocalsMock["identity"] = user

		got, ok := RouterUser(ctx, "identity")
		assert.True(t, ok)
		assert.Same(t, user, got)
	})

	t.Run("should return false when locals hold something else", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.LocalsMock["user"] = "not-a-user"

		got, ok := RouterUser(ctx, "")
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("should return false when locals are empty", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.LocalsMock["user"] = nil

		got, ok := RouterUser(ctx, "")
		assert.False(t, ok)
		assert.Nil(t, got)
	})
}
