package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ReservationServiceName = "agrirent.v1.ReservationService"

	ReservationService_Reserve_FullMethodName         = "/" + ReservationServiceName + "/Reserve"
	ReservationService_CompleteBooking_FullMethodName = "/" + ReservationServiceName + "/CompleteBooking"
	ReservationService_StartRental_FullMethodName     = "/" + ReservationServiceName + "/StartRental"
	ReservationService_IsBookable_FullMethodName      = "/" + ReservationServiceName + "/IsBookable"
)

type ReservationServiceServer interface {
	Reserve(context.Context, *ReserveRequest) (*ReserveResponse, error)
	CompleteBooking(context.Context, *CompleteBookingRequest) (*CompleteBookingResponse, error)
	StartRental(context.Context, *StartRentalRequest) (*StartRentalResponse, error)
	IsBookable(context.Context, *IsBookableRequest) (*IsBookableResponse, error)
}

func unaryHandler[Req, Resp any](fullMethod string, call func(ReservationServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ReservationServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ReservationServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ReservationService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ReservationServiceName,
	HandlerType: (*ReservationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Reserve",
			Handler:    unaryHandler(ReservationService_Reserve_FullMethodName, ReservationServiceServer.Reserve),
		},
		{
			MethodName: "CompleteBooking",
			Handler:    unaryHandler(ReservationService_CompleteBooking_FullMethodName, ReservationServiceServer.CompleteBooking),
		},
		{
			MethodName: "StartRental",
			Handler:    unaryHandler(ReservationService_StartRental_FullMethodName, ReservationServiceServer.StartRental),
		},
		{
			MethodName: "IsBookable",
			Handler:    unaryHandler(ReservationService_IsBookable_FullMethodName, ReservationServiceServer.IsBookable),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "agrirent/v1/reservation",
}

func RegisterReservationServiceServer(s grpc.ServiceRegistrar, srv ReservationServiceServer) {
	s.RegisterService(&ReservationService_ServiceDesc, srv)
}

// ReservationClient calls the service with the JSON codec.
type ReservationClient struct {
	cc grpc.ClientConnInterface
}

func NewReservationClient(cc grpc.ClientConnInterface) *ReservationClient {
	return &ReservationClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ReservationClient) Reserve(ctx context.Context, in *ReserveRequest, opts ...grpc.CallOption) (*ReserveResponse, error) {
	return invoke[ReserveResponse](ctx, c.cc, ReservationService_Reserve_FullMethodName, in, opts)
}

func (c *ReservationClient) CompleteBooking(ctx context.Context, in *CompleteBookingRequest, opts ...grpc.CallOption) (*CompleteBookingResponse, error) {
	return invoke[CompleteBookingResponse](ctx, c.cc, ReservationService_CompleteBooking_FullMethodName, in, opts)
}

func (c *ReservationClient) StartRental(ctx context.Context, in *StartRentalRequest, opts ...grpc.CallOption) (*StartRentalResponse, error) {
	return invoke[StartRentalResponse](ctx, c.cc, ReservationService_StartRental_FullMethodName, in, opts)
}

func (c *ReservationClient) IsBookable(ctx context.Context, in *IsBookableRequest, opts ...grpc.CallOption) (*IsBookableResponse, error) {
	return invoke[IsBookableResponse](ctx, c.cc, ReservationService_IsBookable_FullMethodName, in, opts)
}
