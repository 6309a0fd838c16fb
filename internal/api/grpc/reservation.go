package grpc

import (
	"context"

	"agrirent-backend/internal/service"
	"agrirent-backend/internal/utils"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ReservationHandler struct {
	reservationSvc service.ReservationService
	lifecycleSvc   service.LifecycleService
}

func NewReservationHandler(reservationSvc service.ReservationService, lifecycleSvc service.LifecycleService) *ReservationHandler {
	return &ReservationHandler{reservationSvc: reservationSvc, lifecycleSvc: lifecycleSvc}
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s: %v", field, err)
	}
	return id, nil
}

func (h *ReservationHandler) Reserve(ctx context.Context, req *ReserveRequest) (*ReserveResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	equipmentID, err := parseID("equipment_id", req.EquipmentID)
	if err != nil {
		return nil, err
	}
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "start_date: %v", err)
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "end_date: %v", err)
	}

	res, err := h.reservationSvc.Reserve(ctx, service.ReserveRequest{
		EquipmentID: equipmentID,
		RenterID:    userID,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &ReserveResponse{Booking: MapDomainBooking(res.Booking), Delist: res.Delist}, nil
}

func (h *ReservationHandler) CompleteBooking(ctx context.Context, req *CompleteBookingRequest) (*CompleteBookingResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	equipmentID, err := parseID("equipment_id", req.EquipmentID)
	if err != nil {
		return nil, err
	}
	b, err := h.lifecycleSvc.CompleteBooking(ctx, equipmentID, userID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &CompleteBookingResponse{Booking: MapDomainBooking(b)}, nil
}

func (h *ReservationHandler) StartRental(ctx context.Context, req *StartRentalRequest) (*StartRentalResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	bookingID, err := parseID("booking_id", req.BookingID)
	if err != nil {
		return nil, err
	}
	b, err := h.lifecycleSvc.StartRental(ctx, bookingID, userID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &StartRentalResponse{Booking: MapDomainBooking(b)}, nil
}

func (h *ReservationHandler) IsBookable(ctx context.Context, req *IsBookableRequest) (*IsBookableResponse, error) {
	equipmentID, err := parseID("equipment_id", req.EquipmentID)
	if err != nil {
		return nil, err
	}
	ok, err := h.reservationSvc.IsBookable(ctx, equipmentID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &IsBookableResponse{Bookable: ok}, nil
}
