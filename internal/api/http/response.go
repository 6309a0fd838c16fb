package http

import (
	"errors"
	"net/http"
	"time"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/logger"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const compensationWarning = "equipment availability could not be restored; the item is held until the consistency job releases it"

type errorResponse struct {
	Error   string `json:"error"`
	Warning string `json:"warning,omitempty"`
}

type bookingResponse struct {
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

type reservationResponse struct {
	Booking bookingResponse `json:"booking"`
	Delist  bool            `json:"delist"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
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

type equipmentSummary struct {
	ID              string   `json:"id"`
	Brand           string   `json:"brand"`
	Model           string   `json:"model"`
	Category        string   `json:"category"`
	Location        string   `json:"location"`
	State           string   `json:"state"`
	District        string   `json:"district"`
	DailyPriceCents int64    `json:"daily_price_cents"`
	ImagePaths      []string `json:"image_paths"`
}

type dashboardBookingResponse struct {
	bookingResponse
	Equipment *equipmentSummary `json:"equipment,omitempty"`
}

func toDashboardResponses(views []domain.BookingView) []dashboardBookingResponse {
	out := make([]dashboardBookingResponse, len(views))
	for i := range views {
		out[i].bookingResponse = toBookingResponse(&views[i].Booking)
		if e := views[i].Equipment; e != nil {
			out[i].Equipment = &equipmentSummary{
				ID:              e.ID.String(),
				Brand:           e.Brand,
				Model:           e.Model,
				Category:        e.Category,
				Location:        e.Location,
				State:           e.State,
				District:        e.District,
				DailyPriceCents: e.DailyPriceCents,
				ImagePaths:      nonNil(e.ImagePaths),
			}
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// writeError maps a service error to its HTTP status.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	if errors.Is(err, domain.ErrCompensationFailed) {
		resp.Warning = compensationWarning
	}
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCompensationFailed),
		errors.Is(err, domain.ErrBookingCreateFailed),
		errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidDateRange):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrSelfBooking):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrNoActiveBooking):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyReserved),
		errors.Is(err, domain.ErrReservationRaceLost),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrNotForRent):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
