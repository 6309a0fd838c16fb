package http

import (
	"net/http"
	"time"

	"agrirent-backend/internal/config"
	"agrirent-backend/internal/security"

	"github.com/gorilla/mux"
)

// NewRouter wires every route by name; the auth middleware looks the name up in
// config.EndpointSecurityConfig.
func NewRouter(svc Services, tm security.TokenManager, strandedAfter time.Duration) *mux.Router {
	h := NewHandler(svc, strandedAfter)
	auth := NewAuthMiddleware(tm)

	r := mux.NewRouter()
	r.Use(RequestLogger)
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet).Name(config.RouteHealth)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(auth.Handler)

	api.HandleFunc("/equipment", h.SearchEquipment).Methods(http.MethodGet).Name(config.RouteSearchEquipment)
	api.HandleFunc("/equipment", h.RegisterEquipment).Methods(http.MethodPost).Name(config.RouteRegisterEquipment)
	api.HandleFunc("/equipment/{id}", h.GetEquipment).Methods(http.MethodGet).Name(config.RouteGetEquipment)
	api.HandleFunc("/equipment/{id}/bookable", h.IsBookable).Methods(http.MethodGet).Name(config.RouteIsBookable)
	api.HandleFunc("/equipment/{id}/reservations", h.Reserve).Methods(http.MethodPost).Name(config.RouteReserve)
	api.HandleFunc("/equipment/{id}/complete", h.CompleteBooking).Methods(http.MethodPost).Name(config.RouteCompleteBooking)
	api.HandleFunc("/bookings/{id}/start", h.StartRental).Methods(http.MethodPost).Name(config.RouteStartRental)

	api.HandleFunc("/me/equipment", h.MyEquipment).Methods(http.MethodGet).Name(config.RouteMyEquipment)
	api.HandleFunc("/me/rentals", h.MyRentals).Methods(http.MethodGet).Name(config.RouteMyRentals)
	api.HandleFunc("/me/lendings", h.MyLendings).Methods(http.MethodGet).Name(config.RouteMyLendings)

	api.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet).Name(config.RouteListNotifications)
	api.HandleFunc("/notifications/{id}/read", h.MarkNotificationRead).Methods(http.MethodPost).Name(config.RouteMarkNotificationRead)

	api.HandleFunc("/admin/consistency", h.ConsistencyReport).Methods(http.MethodGet).Name(config.RouteConsistencyReport)

	return r
}
