package grpc

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// UserIDMetadataKey carries the authenticated caller id, set by the auth interceptor.
const UserIDMetadataKey = "user-id"

// GetUserIDFromContext extracts the caller id from the gRPC metadata.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return uuid.Nil, status.Errorf(codes.Unauthenticated, "metadata is not provided")
	}

	userIDs := md.Get(UserIDMetadataKey)
	if len(userIDs) == 0 {
		return uuid.Nil, status.Errorf(codes.Unauthenticated, "user_id is not provided in metadata")
	}

	userID, err := uuid.Parse(userIDs[0])
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid user_id format: %v", err)
	}
	return userID, nil
}
