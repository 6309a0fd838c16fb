package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
	SecurityAdmin                       // Access token with the admin role
)

// HTTP route names, shared by the router and the security map.
const (
	RouteHealth               = "health"
	RouteSearchEquipment      = "equipment.search"
	RouteGetEquipment         = "equipment.get"
	RouteIsBookable           = "equipment.bookable"
	RouteRegisterEquipment    = "equipment.register"
	RouteMyEquipment          = "me.equipment"
	RouteMyRentals            = "me.rentals"
	RouteMyLendings           = "me.lendings"
	RouteReserve              = "equipment.reserve"
	RouteCompleteBooking      = "equipment.complete"
	RouteStartRental          = "bookings.start"
	RouteConsistencyReport    = "admin.consistency"
	RouteListNotifications    = "notifications.list"
	RouteMarkNotificationRead = "notifications.read"
)

// EndpointSecurityConfig maps HTTP route names and gRPC full method names to their
// required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// HTTP - Public
	RouteHealth:          SecurityPublic,
	RouteSearchEquipment: SecurityPublic,
	RouteGetEquipment:    SecurityPublic,
	RouteIsBookable:      SecurityPublic,

	// HTTP - Access Protected
	RouteRegisterEquipment:    SecurityAccess,
	RouteMyEquipment:          SecurityAccess,
	RouteMyRentals:            SecurityAccess,
	RouteMyLendings:           SecurityAccess,
	RouteReserve:              SecurityAccess,
	RouteCompleteBooking:      SecurityAccess,
	RouteStartRental:          SecurityAccess,
	RouteListNotifications:    SecurityAccess,
	RouteMarkNotificationRead: SecurityAccess,

	// HTTP - Admin
	RouteConsistencyReport: SecurityAdmin,

	// ReservationService
	"/agrirent.v1.ReservationService/IsBookable":      SecurityPublic,
	"/agrirent.v1.ReservationService/Reserve":         SecurityAccess,
	"/agrirent.v1.ReservationService/CompleteBooking": SecurityAccess,
	"/agrirent.v1.ReservationService/StartRental":     SecurityAccess,
}

// GetSecurityLevel returns the security level for a route or method.
// Unknown endpoints require an access token.
func GetSecurityLevel(endpoint string) SecurityLevel {
	if level, ok := EndpointSecurityConfig[endpoint]; ok {
		return level
	}
	return SecurityAccess
}
