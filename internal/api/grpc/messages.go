package grpc

import (
	"time"

	"agrirent-backend/internal/domain"
)

type Booking struct {
	ID          string `json:"id"`
	EquipmentID string `json:"equipment_id"`
	RenterID    string `json:"renter_id"`
	OwnerID     string `json:"owner_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	CostCents   int64  `json:"cost_cents"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type ReserveRequest struct {
	EquipmentID string `json:"equipment_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type ReserveResponse struct {
	Booking *Booking `json:"booking"`
	Delist  bool     `json:"delist"`
}

type CompleteBookingRequest struct {
	EquipmentID string `json:"equipment_id"`
}

type CompleteBookingResponse struct {
	Booking *Booking `json:"booking"`
}

type StartRentalRequest struct {
	BookingID string `json:"booking_id"`
}

type StartRentalResponse struct {
	Booking *Booking `json:"booking"`
}

type IsBookableRequest struct {
	EquipmentID string `json:"equipment_id"`
}

type IsBookableResponse struct {
	Bookable bool `json:"bookable"`
}

func MapDomainBooking(b *domain.Booking) *Booking {
	if b == nil {
		return nil
	}
	return &Booking{
		ID:          b.ID.String(),
		EquipmentID: b.EquipmentID.String(),
		RenterID:    b.RenterID.String(),
		OwnerID:     b.OwnerID.String(),
		StartDate:   b.StartDate.Format(domain.DateLayout),
		EndDate:     b.EndDate.Format(domain.DateLayout),
		CostCents:   b.CostCents,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   b.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
