package reservations

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"cinebook/internal/notifications"
	"cinebook/internal/shared/config"
	"cinebook/internal/shows"
	"cinebook/pkg/cache"
	"cinebook/pkg/clock"
	"cinebook/pkg/logger"

	"github.com/google/uuid"
)

// fakeRepository is an in-memory Repository. All mutations go through the
// same mutex so the concurrency tests observe consistent state.
type fakeRepository struct {
	mu       sync.Mutex
	shows    map[uuid.UUID]*shows.Show
	bookings map[uuid.UUID]*Booking
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		shows:    make(map[uuid.UUID]*shows.Show),
		bookings: make(map[uuid.UUID]*Booking),
	}
}

func (f *fakeRepository) WithTx(ctx context.Context, fn func(Repository) error) error {
	return fn(f)
}

func (f *fakeRepository) GetShow(ctx context.Context, showID uuid.UUID) (*shows.Show, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	show, ok := f.shows[showID]
	if !ok {
		return nil, ErrShowNotFound
	}
	copied := *show
	copied.SeatMap = show.SeatMap.Clone()
	return &copied, nil
}

func (f *fakeRepository) UpdateSeatMap(ctx context.Context, showID uuid.UUID, seatMap shows.SeatMap, expectedVersion int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	show, ok := f.shows[showID]
	if !ok {
		return ErrShowNotFound
	}
	if show.Version != expectedVersion {
		return ErrVersionConflict
	}
	show.SeatMap = seatMap.Clone()
	show.Version++
	return nil
}

func (f *fakeRepository) CreateBooking(ctx context.Context, booking *Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *booking
	f.bookings[booking.ID] = &copied
	return nil
}

func (f *fakeRepository) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeRepository) GetBookingByRef(ctx context.Context, ref string) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, booking := range f.bookings {
		if booking.BookingRef == ref {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (f *fakeRepository) TransitionBooking(ctx context.Context, id uuid.UUID, from, to BookingStatus, updates map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok || booking.Status != from {
		return false, nil
	}
	booking.Status = to
	if eventID, ok := updates["provider_event_id"].(string); ok {
		booking.ProviderEventID = &eventID
	}
	if confirmedAt, ok := updates["confirmed_at"].(time.Time); ok {
		booking.ConfirmedAt = &confirmedAt
	}
	return true, nil
}

func (f *fakeRepository) ListStaleHolds(ctx context.Context, cutoff time.Time, limit int) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var stale []Booking
	for _, booking := range f.bookings {
		if booking.Status == StatusPending && booking.CreatedAt.Before(cutoff) {
			stale = append(stale, *booking)
		}
	}
	return stale, nil
}

func (f *fakeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []Booking
	for _, booking := range f.bookings {
		if booking.UserID == userID {
			result = append(result, *booking)
		}
	}
	return result, nil
}

func (f *fakeRepository) ListAll(ctx context.Context) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []Booking
	for _, booking := range f.bookings {
		result = append(result, *booking)
	}
	return result, nil
}

// passthroughCache satisfies cache.Service without storing anything.
type passthroughCache struct{}

func (passthroughCache) Get(ctx context.Context, key string, dest interface{}) error {
	return cache.ErrCacheMiss
}
func (passthroughCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (passthroughCache) Delete(ctx context.Context, key string) error        { return nil }
func (passthroughCache) DeletePattern(ctx context.Context, p string) error   { return nil }
func (passthroughCache) Exists(ctx context.Context, key string) bool         { return false }
func (passthroughCache) Ping(ctx context.Context) error                      { return nil }
func (passthroughCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	data, err := fetcher()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// capturePublisher records published events.
type capturePublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *capturePublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e == eventType {
			n++
		}
	}
	return n
}

func testConfig() *config.Config {
	return &config.Config{
		Reservation: config.ReservationConfig{
			HoldTTL:       10 * time.Minute,
			SweepInterval: time.Minute,
		},
	}
}

func newTestService(clk clock.Clock) (Service, *fakeRepository, *capturePublisher) {
	repo := newFakeRepository()
	publisher := &capturePublisher{}
	svc := NewService(repo, passthroughCache{}, publisher, clk, testConfig(), logger.New())
	return svc, repo, publisher
}

func seedShow(repo *fakeRepository, price float64) *shows.Show {
	show := &shows.Show{
		ID:           uuid.New(),
		MovieID:      "603",
		Screen:       "Screen 1",
		StartTime:    time.Now().Add(24 * time.Hour),
		PricePerSeat: price,
		SeatMap:      shows.NewSeatMap(3, 4),
	}
	repo.shows[show.ID] = show
	return show
}

func TestCreateHold(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("holds all requested seats atomically", func(t *testing.T) {
		svc, repo, _ := newTestService(clock.NewFixed(now))
		show := seedShow(repo, 12.50)
		userID := uuid.New()

		booking, err := svc.CreateHold(ctx, userID, &CreateHoldRequest{
			ShowID: show.ID,
			Seats:  []string{"A1", "A2", "A3"},
		})
		if err != nil {
			t.Fatalf("CreateHold: %v", err)
		}
		if booking.Status != StatusPending {
			t.Errorf("status = %s, want %s", booking.Status, StatusPending)
		}
		if booking.Amount != 37.50 {
			t.Errorf("amount = %v, want 37.50", booking.Amount)
		}

		stored := repo.shows[show.ID]
		for _, seat := range []string{"A1", "A2", "A3"} {
			state := stored.SeatMap[seat]
			if state.Status != shows.SeatHeld {
				t.Errorf("seat %s status = %s, want held", seat, state.Status)
			}
			if state.BookingID == nil || *state.BookingID != booking.ID {
				t.Errorf("seat %s not linked to booking", seat)
			}
		}
	})

	t.Run("rejects the whole hold when one seat is taken", func(t *testing.T) {
		svc, repo, _ := newTestService(clock.NewFixed(now))
		show := seedShow(repo, 10)
		first := uuid.New()
		second := uuid.New()

		if _, err := svc.CreateHold(ctx, first, &CreateHoldRequest{ShowID: show.ID, Seats: []string{"B2"}}); err != nil {
			t.Fatalf("first hold: %v", err)
		}

		_, err := svc.CreateHold(ctx, second, &CreateHoldRequest{ShowID: show.ID, Seats: []string{"B1", "B2", "B3"}})
		var conflict *SeatConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("err = %v, want SeatConflictError", err)
		}
		if conflict.Seat != "B2" {
			t.Errorf("conflict seat = %s, want B2", conflict.Seat)
		}
		if !errors.Is(err, ErrSeatUnavailable) {
			t.Error("conflict error should unwrap to ErrSeatUnavailable")
		}

		// No partial holds: the free seats in the failed request stay free.
		stored := repo.shows[show.ID]
		for _, seat := range []string{"B1", "B3"} {
			if stored.SeatMap[seat].Status != shows.SeatFree {
				t.Errorf("seat %s should remain free after failed hold", seat)
			}
		}
	})

	t.Run("rejects unknown seat labels", func(t *testing.T) {
		svc, repo, _ := newTestService(clock.NewFixed(now))
		show := seedShow(repo, 10)

		_, err := svc.CreateHold(ctx, uuid.New(), &CreateHoldRequest{ShowID: show.ID, Seats: []string{"Z99"}})
		if !errors.Is(err, ErrInvalidSeat) {
			t.Errorf("err = %v, want ErrInvalidSeat", err)
		}
	})

	t.Run("rejects empty seat list", func(t *testing.T) {
		svc, repo, _ := newTestService(clock.NewFixed(now))
		show := seedShow(repo, 10)

		_, err := svc.CreateHold(ctx, uuid.New(), &CreateHoldRequest{ShowID: show.ID, Seats: nil})
		if !errors.Is(err, ErrNoSeats) {
			t.Errorf("err = %v, want ErrNoSeats", err)
		}
	})

	t.Run("rejects unknown show", func(t *testing.T) {
		svc, _, _ := newTestService(clock.NewFixed(now))

		_, err := svc.CreateHold(ctx, uuid.New(), &CreateHoldRequest{ShowID: uuid.New(), Seats: []string{"A1"}})
		if !errors.Is(err, ErrShowNotFound) {
			t.Errorf("err = %v, want ErrShowNotFound", err)
		}
	})

	t.Run("claims seats from a lapsed hold and expires its booking", func(t *testing.T) {
		svc, repo, _ := newTestService(clock.NewFixed(now))
		show := seedShow(repo, 10)
		staleUser := uuid.New()

		stale, err := svc.CreateHold(ctx, staleUser, &CreateHoldRequest{ShowID: show.ID, Seats: []string{"C1", "C2"}})
		if err != nil {
			t.Fatalf("stale hold: %v", err)
		}

		// Age the hold past the TTL.
		lateClock := clock.NewFixed(now.Add(11 * time.Minute))
		latePublisher := &capturePublisher{}
		lateSvc := NewService(repo, passthroughCache{}, latePublisher, lateClock, testConfig(), logger.New())

		fresh, err := lateSvc.CreateHold(ctx, uuid.New(), &CreateHoldRequest{ShowID: show.ID, Seats: []string{"C1"}})
		if err != nil {
			t.Fatalf("fresh hold over lapsed seats: %v", err)
		}

		stored := repo.shows[show.ID]
		if got := stored.SeatMap["C1"].BookingID; got == nil || *got != fresh.ID {
			t.Error("C1 should belong to the fresh booking")
		}
		// The lapsed booking loses all of its seats, not just the contested one.
		if stored.SeatMap["C2"].Status != shows.SeatFree {
			t.Errorf("C2 status = %s, want free", stored.SeatMap["C2"].Status)
		}
		staleStored, _ := repo.GetBooking(ctx, stale.ID)
		if staleStored.Status != StatusExpired {
			t.Errorf("stale booking status = %s, want %s", staleStored.Status, StatusExpired)
		}
		// The claim is the only place this expiry happens; the sweeper will
		// never see the booking again, so the event must come from here.
		if got := latePublisher.count(notifications.EventBookingExpired); got != 1 {
			t.Errorf("expired events = %d, want 1", got)
		}
	})

	t.Run("seats within ttl cannot be claimed", func(t *testing.T) {
		svc, repo, _ := newTestService(clock.NewFixed(now))
		show := seedShow(repo, 10)

		if _, err := svc.CreateHold(ctx, uuid.New(), &CreateHoldRequest{ShowID: show.ID, Seats: []string{"A1"}}); err != nil {
			t.Fatalf("first hold: %v", err)
		}

		// Just under the TTL.
		almostClock := clock.NewFixed(now.Add(9 * time.Minute))
		almostSvc := NewService(repo, passthroughCache{}, &capturePublisher{}, almostClock, testConfig(), logger.New())

		_, err := almostSvc.CreateHold(ctx, uuid.New(), &CreateHoldRequest{ShowID: show.ID, Seats: []string{"A1"}})
		if !errors.Is(err, ErrSeatUnavailable) {
			t.Errorf("err = %v, want seat conflict", err)
		}
	})
}

func TestCreateHoldConcurrent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	svc, repo, _ := newTestService(clock.NewFixed(now))
	show := seedShow(repo, 10)

	const racers = 32
	var wg sync.WaitGroup
	var successes int32
	var successMu sync.Mutex
	var winners []uuid.UUID

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			booking, err := svc.CreateHold(ctx, uuid.New(), &CreateHoldRequest{
				ShowID: show.ID,
				Seats:  []string{"A1"},
			})
			if err == nil {
				successMu.Lock()
				successes++
				winners = append(winners, booking.ID)
				successMu.Unlock()
			} else if !errors.Is(err, ErrSeatUnavailable) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("successes = %d, want exactly 1", successes)
	}
	state := repo.shows[show.ID].SeatMap["A1"]
	if state.Status != shows.SeatHeld || state.BookingID == nil || *state.BookingID != winners[0] {
		t.Error("seat A1 should be held by the single winner")
	}
}

func TestConfirmPayment(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	hold := func(t *testing.T, svc Service, repo *fakeRepository) (*shows.Show, *Booking) {
		t.Helper()
		show := seedShow(repo, 15)
		booking, err := svc.CreateHold(ctx, uuid.New(), &CreateHoldRequest{ShowID: show.ID, Seats: []string{"A1", "A2"}})
		if err != nil {
			t.Fatalf("CreateHold: %v", err)
		}
		return show, booking
	}

	t.Run("marks seats sold and booking paid", func(t *testing.T) {
		svc, repo, publisher := newTestService(clock.NewFixed(now))
		show, booking := hold(t, svc, repo)

		confirmed, err := svc.ConfirmPayment(ctx, booking.BookingRef, "evt_1", 30)
		if err != nil {
			t.Fatalf("ConfirmPayment: %v", err)
		}
		if confirmed.Status != StatusPaid {
			t.Errorf("status = %s, want %s", confirmed.Status, StatusPaid)
		}
		if confirmed.ConfirmedAt == nil {
			t.Error("confirmed_at not set")
		}

		stored := repo.shows[show.ID]
		for _, seat := range []string{"A1", "A2"} {
			if stored.SeatMap[seat].Status != shows.SeatSold {
				t.Errorf("seat %s status = %s, want sold", seat, stored.SeatMap[seat].Status)
			}
		}
		if publisher.count(notifications.EventBookingConfirmed) != 1 {
			t.Error("expected one confirmation event")
		}
	})

	t.Run("replay of the same event is idempotent", func(t *testing.T) {
		svc, repo, publisher := newTestService(clock.NewFixed(now))
		_, booking := hold(t, svc, repo)

		first, err := svc.ConfirmPayment(ctx, booking.BookingRef, "evt_dup", 30)
		if err != nil {
			t.Fatalf("first confirm: %v", err)
		}
		second, err := svc.ConfirmPayment(ctx, booking.BookingRef, "evt_dup", 30)
		if err != nil {
			t.Fatalf("replay: %v", err)
		}
		if second.Status != StatusPaid || second.ID != first.ID {
			t.Error("replay should return the confirmed booking unchanged")
		}
		if publisher.count(notifications.EventBookingConfirmed) != 1 {
			t.Error("replay must not publish a second event")
		}
	})

	t.Run("different event on a paid booking conflicts", func(t *testing.T) {
		svc, repo, _ := newTestService(clock.NewFixed(now))
		_, booking := hold(t, svc, repo)

		if _, err := svc.ConfirmPayment(ctx, booking.BookingRef, "evt_a", 30); err != nil {
			t.Fatalf("confirm: %v", err)
		}
		_, err := svc.ConfirmPayment(ctx, booking.BookingRef, "evt_b", 30)
		if !errors.Is(err, ErrAlreadyFinalized) {
			t.Errorf("err = %v, want ErrAlreadyFinalized", err)
		}
	})

	t.Run("rejects amount mismatch without state change", func(t *testing.T) {
		svc, repo, _ := newTestService(clock.NewFixed(now))
		_, booking := hold(t, svc, repo)

		_, err := svc.ConfirmPayment(ctx, booking.BookingRef, "evt_bad", 17.5)
		if !errors.Is(err, ErrAmountMismatch) {
			t.Fatalf("err = %v, want ErrAmountMismatch", err)
		}
		stored, _ := repo.GetBooking(ctx, booking.ID)
		if stored.Status != StatusPending {
			t.Errorf("booking status = %s, want still pending", stored.Status)
		}
	})

	t.Run("tolerates float drift in the paid amount", func(t *testing.T) {
		svc, repo, _ := newTestService(clock.NewFixed(now))
		show := seedShow(repo, 10.10)

		booking, err := svc.CreateHold(ctx, uuid.New(), &CreateHoldRequest{ShowID: show.ID, Seats: []string{"A1", "A2", "A3"}})
		if err != nil {
			t.Fatalf("CreateHold: %v", err)
		}

		// 10.10 * 3 is not representable exactly; the provider reports the
		// cent-rounded total.
		confirmed, err := svc.ConfirmPayment(ctx, booking.BookingRef, "evt_cents", 30.30)
		if err != nil {
			t.Fatalf("ConfirmPayment: %v", err)
		}
		if confirmed.Status != StatusPaid {
			t.Errorf("status = %s, want %s", confirmed.Status, StatusPaid)
		}
	})

	t.Run("unknown booking ref", func(t *testing.T) {
		svc, _, _ := newTestService(clock.NewFixed(now))

		_, err := svc.ConfirmPayment(ctx, "CNB-20260830-ZZZZZZ", "evt_x", 10)
		if !errors.Is(err, ErrBookingNotFound) {
			t.Errorf("err = %v, want ErrBookingNotFound", err)
		}
	})

	t.Run("fails when seats were claimed by a newer hold", func(t *testing.T) {
		svc, repo, _ := newTestService(clock.NewFixed(now))
		show, booking := hold(t, svc, repo)

		// A later hold claims the lapsed seats before the payment lands.
		lateClock := clock.NewFixed(now.Add(11 * time.Minute))
		lateSvc := NewService(repo, passthroughCache{}, &capturePublisher{}, lateClock, testConfig(), logger.New())
		if _, err := lateSvc.CreateHold(ctx, uuid.New(), &CreateHoldRequest{ShowID: show.ID, Seats: []string{"A1"}}); err != nil {
			t.Fatalf("competing hold: %v", err)
		}

		_, err := svc.ConfirmPayment(ctx, booking.BookingRef, "evt_late", 30)
		if !errors.Is(err, ErrHoldExpired) {
			t.Errorf("err = %v, want ErrHoldExpired", err)
		}
	})

	t.Run("expired booking rejects confirmation", func(t *testing.T) {
		svc, repo, _ := newTestService(clock.NewFixed(now.Add(11 * time.Minute)))
		show := seedShow(repo, 15)

		early := NewService(repo, passthroughCache{}, &capturePublisher{}, clock.NewFixed(now), testConfig(), logger.New())
		booking, err := early.CreateHold(ctx, uuid.New(), &CreateHoldRequest{ShowID: show.ID, Seats: []string{"A1"}})
		if err != nil {
			t.Fatalf("CreateHold: %v", err)
		}
		booking.CreatedAt = now
		repo.bookings[booking.ID].CreatedAt = now

		if _, err := svc.ExpireStaleHolds(ctx); err != nil {
			t.Fatalf("ExpireStaleHolds: %v", err)
		}

		_, err = svc.ConfirmPayment(ctx, booking.BookingRef, "evt_expired", 15)
		if !errors.Is(err, ErrHoldExpired) {
			t.Errorf("err = %v, want ErrHoldExpired", err)
		}
	})
}

func TestCancelHold(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("owner cancels a pending hold", func(t *testing.T) {
		svc, repo, publisher := newTestService(clock.NewFixed(now))
		show := seedShow(repo, 10)
		userID := uuid.New()

		booking, err := svc.CreateHold(ctx, userID, &CreateHoldRequest{ShowID: show.ID, Seats: []string{"A1", "A2"}})
		if err != nil {
			t.Fatalf("CreateHold: %v", err)
		}

		cancelled, err := svc.CancelHold(ctx, userID, booking.ID)
		if err != nil {
			t.Fatalf("CancelHold: %v", err)
		}
		if cancelled.Status != StatusCancelled {
			t.Errorf("status = %s, want %s", cancelled.Status, StatusCancelled)
		}

		stored := repo.shows[show.ID]
		for _, seat := range []string{"A1", "A2"} {
			if stored.SeatMap[seat].Status != shows.SeatFree {
				t.Errorf("seat %s should be free after cancel", seat)
			}
		}
		if publisher.count(notifications.EventBookingCancelled) != 1 {
			t.Error("expected one cancellation event")
		}
	})

	t.Run("non-owner cannot cancel", func(t *testing.T) {
		svc, repo, _ := newTestService(clock.NewFixed(now))
		show := seedShow(repo, 10)

		booking, err := svc.CreateHold(ctx, uuid.New(), &CreateHoldRequest{ShowID: show.ID, Seats: []string{"A1"}})
		if err != nil {
			t.Fatalf("CreateHold: %v", err)
		}

		_, err = svc.CancelHold(ctx, uuid.New(), booking.ID)
		if !errors.Is(err, ErrNotOwner) {
			t.Errorf("err = %v, want ErrNotOwner", err)
		}
	})

	t.Run("paid booking cannot be cancelled", func(t *testing.T) {
		svc, repo, _ := newTestService(clock.NewFixed(now))
		show := seedShow(repo, 10)
		userID := uuid.New()

		booking, err := svc.CreateHold(ctx, userID, &CreateHoldRequest{ShowID: show.ID, Seats: []string{"A1"}})
		if err != nil {
			t.Fatalf("CreateHold: %v", err)
		}
		if _, err := svc.ConfirmPayment(ctx, booking.BookingRef, "evt_1", 10); err != nil {
			t.Fatalf("ConfirmPayment: %v", err)
		}

		_, err = svc.CancelHold(ctx, userID, booking.ID)
		if !errors.Is(err, ErrAlreadyFinalized) {
			t.Errorf("err = %v, want ErrAlreadyFinalized", err)
		}
	})
}

func TestReleaseBooking(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("releases a pending hold", func(t *testing.T) {
		svc, repo, _ := newTestService(clock.NewFixed(now))
		show := seedShow(repo, 10)

		booking, err := svc.CreateHold(ctx, uuid.New(), &CreateHoldRequest{ShowID: show.ID, Seats: []string{"A1"}})
		if err != nil {
			t.Fatalf("CreateHold: %v", err)
		}

		if err := svc.ReleaseBooking(ctx, booking.BookingRef, StatusCancelled, "payment failed"); err != nil {
			t.Fatalf("ReleaseBooking: %v", err)
		}
		stored, _ := repo.GetBooking(ctx, booking.ID)
		if stored.Status != StatusCancelled {
			t.Errorf("status = %s, want %s", stored.Status, StatusCancelled)
		}
		if repo.shows[show.ID].SeatMap["A1"].Status != shows.SeatFree {
			t.Error("seat should be free after release")
		}
	})

	t.Run("finalized booking is a no-op", func(t *testing.T) {
		svc, repo, _ := newTestService(clock.NewFixed(now))
		show := seedShow(repo, 10)

		booking, err := svc.CreateHold(ctx, uuid.New(), &CreateHoldRequest{ShowID: show.ID, Seats: []string{"A1"}})
		if err != nil {
			t.Fatalf("CreateHold: %v", err)
		}
		if _, err := svc.ConfirmPayment(ctx, booking.BookingRef, "evt_1", 10); err != nil {
			t.Fatalf("ConfirmPayment: %v", err)
		}

		if err := svc.ReleaseBooking(ctx, booking.BookingRef, StatusCancelled, "late failure event"); err != nil {
			t.Fatalf("ReleaseBooking on paid booking: %v", err)
		}
		stored, _ := repo.GetBooking(ctx, booking.ID)
		if stored.Status != StatusPaid {
			t.Errorf("paid booking must stay paid, got %s", stored.Status)
		}
		if repo.shows[show.ID].SeatMap["A1"].Status != shows.SeatSold {
			t.Error("sold seat must stay sold")
		}
	})
}

func TestExpireStaleHolds(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	svc, repo, publisher := newTestService(clock.NewFixed(now.Add(11 * time.Minute)))
	show := seedShow(repo, 10)

	early := NewService(repo, passthroughCache{}, &capturePublisher{}, clock.NewFixed(now), testConfig(), logger.New())
	stale, err := early.CreateHold(ctx, uuid.New(), &CreateHoldRequest{ShowID: show.ID, Seats: []string{"A1", "A2"}})
	if err != nil {
		t.Fatalf("stale hold: %v", err)
	}
	repo.bookings[stale.ID].CreatedAt = now

	fresh, err := svc.CreateHold(ctx, uuid.New(), &CreateHoldRequest{ShowID: show.ID, Seats: []string{"B1"}})
	if err != nil {
		t.Fatalf("fresh hold: %v", err)
	}
	repo.bookings[fresh.ID].CreatedAt = now.Add(11 * time.Minute)

	released, err := svc.ExpireStaleHolds(ctx)
	if err != nil {
		t.Fatalf("ExpireStaleHolds: %v", err)
	}
	if released != 1 {
		t.Fatalf("released = %d, want 1", released)
	}

	staleStored, _ := repo.GetBooking(ctx, stale.ID)
	if staleStored.Status != StatusExpired {
		t.Errorf("stale status = %s, want %s", staleStored.Status, StatusExpired)
	}
	freshStored, _ := repo.GetBooking(ctx, fresh.ID)
	if freshStored.Status != StatusPending {
		t.Errorf("fresh status = %s, want %s", freshStored.Status, StatusPending)
	}

	stored := repo.shows[show.ID]
	for _, seat := range []string{"A1", "A2"} {
		if stored.SeatMap[seat].Status != shows.SeatFree {
			t.Errorf("seat %s should be free after sweep", seat)
		}
	}
	if stored.SeatMap["B1"].Status != shows.SeatHeld {
		t.Error("fresh hold's seat must stay held")
	}
	if publisher.count(notifications.EventBookingExpired) != 1 {
		t.Error("expected one expiry event")
	}

	// Second sweep finds nothing.
	released, err = svc.ExpireStaleHolds(ctx)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if released != 0 {
		t.Errorf("second sweep released = %d, want 0", released)
	}
}

func TestNewBookingRef(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	ref := NewBookingRef(now)

	if len(ref) != len("CNB-20260830-XXXXXX") {
		t.Fatalf("ref %q has unexpected length", ref)
	}
	if ref[:13] != "CNB-20260830-" {
		t.Errorf("ref %q should start with CNB-20260830-", ref)
	}
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		r := NewBookingRef(now)
		if _, dup := seen[r]; dup {
			t.Fatalf("duplicate ref generated: %s", r)
		}
		seen[r] = struct{}{}
	}
}
