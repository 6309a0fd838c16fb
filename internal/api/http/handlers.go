package http

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/security"
	"agrirent-backend/internal/service"
	"agrirent-backend/internal/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

// Services groups everything the HTTP API calls into.
type Services struct {
	Reservations  service.ReservationService
	Lifecycle     service.LifecycleService
	Equipment     service.EquipmentService
	Bookings      service.BookingQueryService
	Notifications service.NotificationService
}

type Handler struct {
	svc           Services
	strandedAfter time.Duration
}

func NewHandler(svc Services, strandedAfter time.Duration) *Handler {
	return &Handler{svc: svc, strandedAfter: strandedAfter}
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	return id, err == nil
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) SearchEquipment(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.EquipmentFilter{
		Category: q.Get("category"),
		State:    q.Get("state"),
		District: q.Get("district"),
	}
	if raw := q.Get("max_price_cents"); raw != "" {
		maxPrice, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || maxPrice < 0 {
			writeBadRequest(w, "max_price_cents must be a non-negative integer")
			return
		}
		filter.MaxDailyPriceCents = maxPrice
	}

	items, err := h.svc.Equipment.Search(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"equipment": nonNil(items)})
}

func (h *Handler) GetEquipment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid equipment id")
		return
	}
	e, err := h.svc.Equipment.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) IsBookable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid equipment id")
		return
	}
	bookable, err := h.svc.Reservations.IsBookable(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"bookable": bookable})
}

func (h *Handler) RegisterEquipment(w http.ResponseWriter, r *http.Request) {
	var e domain.Equipment
	if err := decodeBody(r, &e); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := h.svc.Equipment.Register(r.Context(), security.UserIDFromContext(r.Context()), &e); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &e)
}

func (h *Handler) MyEquipment(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Equipment.ListMine(r.Context(), security.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"equipment": nonNil(items)})
}

func (h *Handler) MyRentals(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.svc.Bookings.ListRentals(r.Context(), security.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": toDashboardResponses(bookings)})
}

func (h *Handler) MyLendings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.svc.Bookings.ListLendings(r.Context(), security.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": toDashboardResponses(bookings)})
}

type reserveRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid equipment id")
		return
	}
	var body reserveRequest
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	start, err := utils.ParseDate(body.StartDate)
	if err != nil {
		writeBadRequest(w, "start_date: "+err.Error())
		return
	}
	end, err := utils.ParseDate(body.EndDate)
	if err != nil {
		writeBadRequest(w, "end_date: "+err.Error())
		return
	}

	res, err := h.svc.Reservations.Reserve(r.Context(), service.ReserveRequest{
		EquipmentID: id,
		RenterID:    security.UserIDFromContext(r.Context()),
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reservationResponse{Booking: toBookingResponse(res.Booking), Delist: res.Delist})
}

func (h *Handler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid equipment id")
		return
	}
	b, err := h.svc.Lifecycle.CompleteBooking(r.Context(), id, security.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(b))
}

func (h *Handler) StartRental(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid booking id")
		return
	}
	b, err := h.svc.Lifecycle.StartRental(r.Context(), id, security.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(b))
}

func (h *Handler) ConsistencyReport(w http.ResponseWriter, r *http.Request) {
	grace := h.strandedAfter
	if raw := r.URL.Query().Get("grace_minutes"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes < 0 {
			writeBadRequest(w, "grace_minutes must be a non-negative integer")
			return
		}
		grace = time.Duration(minutes) * time.Minute
	}
	report, err := h.svc.Lifecycle.DetectInconsistencies(r.Context(), grace)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.ParseInt(q.Get("page"), 10, 32)
	pageSize, _ := strconv.ParseInt(q.Get("page_size"), 10, 32)

	notes, total, err := h.svc.Notifications.GetNotifications(r.Context(),
		security.UserIDFromContext(r.Context()), int32(page), int32(pageSize))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": nonNil(notes), "total_count": total})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid notification id")
		return
	}
	if err := h.svc.Notifications.MarkAsRead(r.Context(), security.UserIDFromContext(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
