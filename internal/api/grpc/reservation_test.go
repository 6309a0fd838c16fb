package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/repository/memory"
	"agrirent-backend/internal/security"
	"agrirent-backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type testEnv struct {
	store  *memory.Store
	tokens security.TokenManager
	client *ReservationClient
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	now := func() time.Time { return time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC) }
	store := memory.NewStore()
	tm := security.NewTokenManager("grpc-secret", "")
	h := NewReservationHandler(
		service.NewReservationService(store.Equipment, store.Bookings, service.WithClock(now)),
		service.NewLifecycleService(store.Equipment, store.Bookings, service.WithLifecycleClock(now)),
	)

	lis := bufconn.Listen(1 << 20)
	srv := NewServer(h, tm)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &testEnv{store: store, tokens: tm, client: NewReservationClient(conn)}
}

func (e *testEnv) authed(t *testing.T, userID uuid.UUID) context.Context {
	t.Helper()
	tok, err := e.tokens.GenerateAccessToken(userID, "", nil)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+tok)
}

func (e *testEnv) seed(t *testing.T, ownerID uuid.UUID) *domain.Equipment {
	t.Helper()
	item := &domain.Equipment{OwnerID: ownerID, Category: "Seeder", DailyPriceCents: 200, Condition: 5, Available: true, ForRent: true}
	require.NoError(t, e.store.Equipment.Create(context.Background(), item))
	return item
}

func TestReservationService_OverGRPC(t *testing.T) {
	env := newTestEnv(t)
	owner, renter := uuid.New(), uuid.New()
	item := env.seed(t, owner)

	bookable, err := env.client.IsBookable(context.Background(), &IsBookableRequest{EquipmentID: item.ID.String()})
	require.NoError(t, err)
	assert.True(t, bookable.Bookable)

	res, err := env.client.Reserve(env.authed(t, renter), &ReserveRequest{
		EquipmentID: item.ID.String(),
		StartDate:   "2024-06-10",
		EndDate:     "2024-06-12",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(600), res.Booking.CostCents)
	assert.Equal(t, renter.String(), res.Booking.RenterID)
	assert.True(t, res.Delist)

	_, err = env.client.Reserve(env.authed(t, uuid.New()), &ReserveRequest{
		EquipmentID: item.ID.String(),
		StartDate:   "2024-06-10",
		EndDate:     "2024-06-12",
	})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	started, err := env.client.StartRental(env.authed(t, owner), &StartRentalRequest{BookingID: res.Booking.ID})
	require.NoError(t, err)
	assert.Equal(t, string(domain.BookingStatusRented), started.Booking.Status)

	_, err = env.client.CompleteBooking(env.authed(t, renter), &CompleteBookingRequest{EquipmentID: item.ID.String()})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	done, err := env.client.CompleteBooking(env.authed(t, owner), &CompleteBookingRequest{EquipmentID: item.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, string(domain.BookingStatusCompleted), done.Booking.Status)

	_, err = env.client.CompleteBooking(env.authed(t, owner), &CompleteBookingRequest{EquipmentID: item.ID.String()})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestReserveRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	item := env.seed(t, uuid.New())

	_, err := env.client.Reserve(context.Background(), &ReserveRequest{
		EquipmentID: item.ID.String(), StartDate: "2024-06-10", EndDate: "2024-06-12",
	})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	// A forged user-id header without a token is not enough.
	ctx := metadata.AppendToOutgoingContext(context.Background(), "user-id", uuid.NewString())
	_, err = env.client.Reserve(ctx, &ReserveRequest{
		EquipmentID: item.ID.String(), StartDate: "2024-06-10", EndDate: "2024-06-12",
	})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestReserveInvalidArguments(t *testing.T) {
	env := newTestEnv(t)
	item := env.seed(t, uuid.New())
	ctx := env.authed(t, uuid.New())

	_, err := env.client.Reserve(ctx, &ReserveRequest{EquipmentID: "nope", StartDate: "2024-06-10", EndDate: "2024-06-12"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = env.client.Reserve(ctx, &ReserveRequest{EquipmentID: item.ID.String(), StartDate: "2024-06-12", EndDate: "2024-06-10"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestReserveInsertFailureIsUnavailable(t *testing.T) {
	env := newTestEnv(t)
	item := env.seed(t, uuid.New())
	env.store.FailNext(memory.OpInsertBooking, errors.New("injected"))

	_, err := env.client.Reserve(env.authed(t, uuid.New()), &ReserveRequest{
		EquipmentID: item.ID.String(), StartDate: "2024-06-10", EndDate: "2024-06-12",
	})
	assert.Equal(t, codes.Unavailable, status.Code(err))

	bookable, err := env.client.IsBookable(context.Background(), &IsBookableRequest{EquipmentID: item.ID.String()})
	require.NoError(t, err)
	assert.True(t, bookable.Bookable)
}

func TestCodeFor(t *testing.T) {
	assert.Equal(t, codes.Aborted, codeFor(domain.ErrReservationRaceLost))
	assert.Equal(t, codes.FailedPrecondition, codeFor(domain.ErrInvalidTransition))
	assert.Equal(t, codes.PermissionDenied, codeFor(domain.ErrSelfBooking))
	assert.Equal(t, codes.Unavailable, codeFor(errors.Join(domain.ErrBookingCreateFailed, domain.ErrCompensationFailed)))
	assert.Equal(t, codes.Internal, codeFor(errors.New("boom")))
}
