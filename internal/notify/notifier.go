package notify

import (
	"context"
	"errors"
	"fmt"
	"html"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/repository"

	"github.com/google/uuid"
)

const (
	TypeBookingReserved  = "booking_reserved"
	TypeBookingCompleted = "booking_completed"
)

// Notifier writes an in-app notification and sends an email for booking events.
type Notifier struct {
	notes  repository.NotificationRepository
	users  repository.UserRepository
	mailer Mailer
}

func NewNotifier(notes repository.NotificationRepository, users repository.UserRepository, mailer Mailer) *Notifier {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &Notifier{notes: notes, users: users, mailer: mailer}
}

func equipmentName(e *domain.Equipment) string {
	name := e.Brand
	if e.Model != "" {
		if name != "" {
			name += " "
		}
		name += e.Model
	}
	if name == "" {
		name = e.Category
	}
	return name
}

func formatRupees(cents int64) string {
	return fmt.Sprintf("₹%d.%02d", cents/100, cents%100)
}

// BookingReserved tells the owner their equipment was booked.
func (n *Notifier) BookingReserved(ctx context.Context, b *domain.Booking, e *domain.Equipment) error {
	name := equipmentName(e)
	title := "New booking: " + name
	body := fmt.Sprintf("Your %s has been booked from %s to %s for %s.",
		name, b.StartDate.Format(domain.DateLayout), b.EndDate.Format(domain.DateLayout), formatRupees(b.CostCents))
	return n.deliver(ctx, b.OwnerID, TypeBookingReserved, b, title, body)
}

// BookingCompleted tells the renter the owner closed the booking.
func (n *Notifier) BookingCompleted(ctx context.Context, b *domain.Booking) error {
	title := "Booking completed"
	body := fmt.Sprintf("Your booking from %s to %s has been marked completed by the owner.",
		b.StartDate.Format(domain.DateLayout), b.EndDate.Format(domain.DateLayout))
	return n.deliver(ctx, b.RenterID, TypeBookingCompleted, b, title, body)
}

func (n *Notifier) deliver(ctx context.Context, uid uuid.UUID, kind string, b *domain.Booking, title, body string) error {
	var errs []error

	note := &domain.Notification{
		UserID:  uid,
		Title:   title,
		Message: body,
		Attributes: map[string]string{
			"type":         kind,
			"booking_id":   b.ID.String(),
			"equipment_id": b.EquipmentID.String(),
		},
	}
	if err := n.notes.Create(ctx, note); err != nil {
		errs = append(errs, fmt.Errorf("store notification for %s: %w", uid, err))
	}

	user, err := n.users.GetByID(ctx, uid)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// No profile means no address; the in-app notification is enough.
	case err != nil:
		errs = append(errs, fmt.Errorf("load profile %s: %w", uid, err))
	case user.Email != "":
		msg := Message{ToEmail: user.Email, ToName: user.Name, Subject: title, PlainText: body, HTML: "<p>" + html.EscapeString(body) + "</p>"}
		if err := n.mailer.Send(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
