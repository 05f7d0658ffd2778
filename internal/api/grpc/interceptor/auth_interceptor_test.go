package interceptor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"fieldservice-backend/internal/security"
)

func TestAuthInterceptor_Unary(t *testing.T) {
	tm := security.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	unary := NewAuthInterceptor(tm).Unary()
	protected := &grpc.UnaryServerInfo{FullMethod: "/fieldservice.v1.CoordinatorService/ClaimJob"}

	var seen metadata.MD
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		seen, _ = metadata.FromIncomingContext(ctx)
		return "ok", nil
	}

	t.Run("Injects identity and overwrites spoofed headers", func(t *testing.T) {
		token, err := tm.GenerateAccessToken(42, "worker", nil)
		require.NoError(t, err)
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
			"authorization", "Bearer "+token,
			"user-id", "1",
			"user-name", "admin",
		))

		resp, err := unary(ctx, nil, protected, handler)
		require.NoError(t, err)
		assert.Equal(t, "ok", resp)
		assert.Equal(t, []string{"42"}, seen.Get("user-id"))
		assert.Equal(t, []string{"worker"}, seen.Get("user-name"))
	})

	t.Run("Missing metadata", func(t *testing.T) {
		_, err := unary(context.Background(), nil, protected, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("Public method skips auth", func(t *testing.T) {
		public := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
		resp, err := unary(context.Background(), nil, public, handler)
		require.NoError(t, err)
		assert.Equal(t, "ok", resp)
	})
}
