package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type fakeSender struct {
	sent     []*mail.SGMailV3
	response *rest.Response
	err      error
}

func (f *fakeSender) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	return f.response, f.err
}

func testBooking(owner, renter uuid.UUID) *domain.Booking {
	start := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Booking{
		ID: uuid.New(), EquipmentID: uuid.New(), OwnerID: owner, RenterID: renter,
		StartDate: start, EndDate: start.AddDate(0, 0, 2), CostCents: 450000, Status: domain.BookingStatusPending,
	}
}

func TestBookingReserved(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	owner, renter := uuid.New(), uuid.New()
	require.NoError(t, store.Users.Create(ctx, &domain.User{ID: owner, Email: "owner@example.com", Name: "Gurpreet"}))

	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(m Message) bool {
		return m.ToEmail == "owner@example.com" && m.Subject == "New booking: Mahindra 575 DI"
	})).Return(nil)

	n := NewNotifier(store.Notifications, store.Users, mailer)
	b := testBooking(owner, renter)
	err := n.BookingReserved(ctx, b, &domain.Equipment{Brand: "Mahindra", Model: "575 DI", Category: "Tractor"})
	require.NoError(t, err)

	notes, total, err := store.Notifications.List(ctx, owner, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(1), total)
	assert.Contains(t, notes[0].Message, "₹4500.00")
	assert.Equal(t, TypeBookingReserved, notes[0].Attributes["type"])
	assert.Equal(t, b.ID.String(), notes[0].Attributes["booking_id"])
	mailer.AssertExpectations(t)
}

func TestBookingCompletedWithoutProfile(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	mailer := new(MockMailer)

	n := NewNotifier(store.Notifications, store.Users, mailer)
	b := testBooking(uuid.New(), uuid.New())
	require.NoError(t, n.BookingCompleted(ctx, b))

	_, total, err := store.Notifications.List(ctx, b.RenterID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(1), total)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDeliverJoinsFailures(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	owner := uuid.New()
	require.NoError(t, store.Users.Create(ctx, &domain.User{ID: owner, Email: "owner@example.com"}))
	store.FailNext(memory.OpCreateNotification, errors.New("db down"))

	mailErr := errors.New("smtp down")
	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.Anything).Return(mailErr)

	n := NewNotifier(store.Notifications, store.Users, mailer)
	err := n.BookingReserved(ctx, testBooking(owner, uuid.New()), &domain.Equipment{Category: "Harvester"})
	require.Error(t, err)
	assert.ErrorIs(t, err, mailErr)
	assert.Contains(t, err.Error(), "db down")
}

func TestSendGridMailer(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		fake := &fakeSender{response: &rest.Response{StatusCode: 202}}
		m := &SendGridMailer{client: fake, from: mail.NewEmail("AgriRent", "no-reply@agrirent.example")}

		err := m.Send(context.Background(), Message{ToEmail: "a@example.com", ToName: "A", Subject: "Hi", PlainText: "hello", HTML: "<p>hello</p>"})
		require.NoError(t, err)
		require.Len(t, fake.sent, 1)
		assert.Equal(t, "Hi", fake.sent[0].Subject)
		assert.Equal(t, "a@example.com", fake.sent[0].Personalizations[0].To[0].Address)
	})

	t.Run("ErrorStatus", func(t *testing.T) {
		fake := &fakeSender{response: &rest.Response{StatusCode: 401, Body: "unauthorized"}}
		m := &SendGridMailer{client: fake, from: mail.NewEmail("AgriRent", "no-reply@agrirent.example")}

		err := m.Send(context.Background(), Message{ToEmail: "a@example.com", Subject: "Hi"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})

	t.Run("TransportError", func(t *testing.T) {
		fake := &fakeSender{err: errors.New("dial tcp: timeout")}
		m := &SendGridMailer{client: fake, from: mail.NewEmail("AgriRent", "no-reply@agrirent.example")}

		err := m.Send(context.Background(), Message{ToEmail: "a@example.com", Subject: "Hi"})
		assert.Error(t, err)
	})
}
