package grpc

import (
	"agrirent-backend/internal/api/grpc/interceptor"
	"agrirent-backend/internal/security"

	"google.golang.org/grpc"
)

// NewServer builds a gRPC server with logging and auth interceptors and the
// reservation service registered.
func NewServer(h ReservationServiceServer, tm security.TokenManager, opts ...grpc.ServerOption) *grpc.Server {
	auth := interceptor.NewAuthInterceptor(tm)
	opts = append(opts, grpc.ChainUnaryInterceptor(interceptor.Logging(), auth.Unary()))
	s := grpc.NewServer(opts...)
	RegisterReservationServiceServer(s, h)
	return s
}
