package grpc

import (
	"context"
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"fieldservice-backend/internal/domain"
)

// Metadata keys set by the auth interceptor from validated token claims.
const (
	UserIDKey   = "user-id"
	UserNameKey = "user-name"
)

// GetUserIDFromContext extracts the user ID from the gRPC metadata.
// It expects a header named "user-id".
func GetUserIDFromContext(ctx context.Context) (int32, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return 0, status.Errorf(codes.Unauthenticated, "metadata is not provided")
	}

	userIDs := md.Get(UserIDKey)
	if len(userIDs) == 0 {
		return 0, status.Errorf(codes.Unauthenticated, "user_id is not provided in metadata")
	}

	userID, err := strconv.ParseInt(userIDs[0], 10, 32)
	if err != nil {
		return 0, status.Errorf(codes.InvalidArgument, "invalid user_id format: %v", err)
	}

	return int32(userID), nil
}

// GetActorFromContext is GetUserIDFromContext plus the display name.
func GetActorFromContext(ctx context.Context) (domain.Actor, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return domain.Actor{}, err
	}
	actor := domain.Actor{UserID: userID}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if names := md.Get(UserNameKey); len(names) > 0 {
			actor.Name = names[0]
		}
	}
	return actor, nil
}
