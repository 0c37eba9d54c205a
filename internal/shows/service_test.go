package shows

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"cinebook/internal/movies"
	"cinebook/internal/shared/config"
	"cinebook/pkg/cache"
	"cinebook/pkg/clock"
	"cinebook/pkg/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	mu    sync.Mutex
	shows map[uuid.UUID]*Show
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{shows: make(map[uuid.UUID]*Show)}
}

func (f *fakeRepo) CreateBatch(ctx context.Context, batch []*Show) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, show := range batch {
		copied := *show
		f.shows[show.ID] = &copied
	}
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Show, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	show, ok := f.shows[id]
	if !ok {
		return nil, ErrShowNotFound
	}
	copied := *show
	copied.SeatMap = show.SeatMap.Clone()
	return &copied, nil
}

func (f *fakeRepo) ListUpcoming(ctx context.Context, after time.Time) ([]Show, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []Show
	for _, show := range f.shows {
		if show.StartTime.After(after) {
			result = append(result, *show)
		}
	}
	return result, nil
}

func (f *fakeRepo) ListByMovie(ctx context.Context, movieID string, after time.Time) ([]Show, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []Show
	for _, show := range f.shows {
		if show.MovieID == movieID && show.StartTime.After(after) {
			result = append(result, *show)
		}
	}
	return result, nil
}

func (f *fakeRepo) ListMovieIDsWithUpcoming(ctx context.Context, after time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]struct{}{}
	var result []string
	for _, show := range f.shows {
		if !show.StartTime.After(after) {
			continue
		}
		if _, ok := seen[show.MovieID]; ok {
			continue
		}
		seen[show.MovieID] = struct{}{}
		result = append(result, show.MovieID)
	}
	return result, nil
}

// fakeResolver records metadata lookups and optionally fails them.
type fakeResolver struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (f *fakeResolver) GetOrRefresh(ctx context.Context, id string) (*movies.MovieDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
	if f.err != nil {
		return nil, f.err
	}
	return &movies.MovieDetail{Movie: movies.Movie{ID: id}}, nil
}

type passthroughCache struct{}

func (passthroughCache) Get(ctx context.Context, key string, dest interface{}) error {
	return cache.ErrCacheMiss
}
func (passthroughCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (passthroughCache) Delete(ctx context.Context, key string) error      { return nil }
func (passthroughCache) DeletePattern(ctx context.Context, p string) error { return nil }
func (passthroughCache) Exists(ctx context.Context, key string) bool       { return false }
func (passthroughCache) Ping(ctx context.Context) error                    { return nil }
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

func testConfig() *config.Config {
	return &config.Config{
		Reservation: config.ReservationConfig{HoldTTL: 10 * time.Minute},
	}
}

func TestCreateShows(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("creates one show per start time", func(t *testing.T) {
		repo := newFakeRepo()
		publisher := &capturePublisher{}
		resolver := &fakeResolver{}
		svc := NewService(repo, resolver, passthroughCache{}, publisher, clock.NewFixed(now), testConfig(), logger.New())

		created, err := svc.CreateShows(ctx, &CreateShowsRequest{
			MovieID:      "603",
			Screen:       "Screen 2",
			PricePerSeat: 11,
			Rows:         2,
			SeatsPerRow:  5,
			StartTimes:   []time.Time{now.Add(time.Hour), now.Add(4 * time.Hour)},
		})
		if err != nil {
			t.Fatalf("CreateShows: %v", err)
		}
		if len(created) != 2 {
			t.Fatalf("created %d shows, want 2", len(created))
		}
		for _, summary := range created {
			if summary.Seats.Total != 10 || summary.Seats.Free != 10 {
				t.Errorf("new show seats = %+v, want 10 free", summary.Seats)
			}
		}
		if len(publisher.events) != 2 {
			t.Errorf("published %d events, want 2", len(publisher.events))
		}
		if len(resolver.ids) != 1 || resolver.ids[0] != "603" {
			t.Errorf("metadata lookups = %v, want one for 603", resolver.ids)
		}
	})

	t.Run("metadata failure does not block creation", func(t *testing.T) {
		repo := newFakeRepo()
		resolver := &fakeResolver{err: movies.ErrCatalogUnavailable}
		svc := NewService(repo, resolver, passthroughCache{}, &capturePublisher{}, clock.NewFixed(now), testConfig(), logger.New())

		created, err := svc.CreateShows(ctx, &CreateShowsRequest{
			MovieID:      "603",
			Screen:       "Screen 2",
			PricePerSeat: 11,
			StartTimes:   []time.Time{now.Add(time.Hour)},
		})
		if err != nil {
			t.Fatalf("CreateShows: %v", err)
		}
		if len(created) != 1 {
			t.Fatalf("created %d shows, want 1", len(created))
		}
	})

	t.Run("rejects past start times", func(t *testing.T) {
		svc := NewService(newFakeRepo(), &fakeResolver{}, passthroughCache{}, &capturePublisher{}, clock.NewFixed(now), testConfig(), logger.New())

		_, err := svc.CreateShows(ctx, &CreateShowsRequest{
			MovieID:      "603",
			Screen:       "Screen 2",
			PricePerSeat: 11,
			StartTimes:   []time.Time{now.Add(-time.Hour)},
		})
		if err != ErrStartTimeInPast {
			t.Errorf("err = %v, want ErrStartTimeInPast", err)
		}
	})
}

func TestGetShowAvailability(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	repo := newFakeRepo()
	bookingID := uuid.New()
	freshHeld := now.Add(-5 * time.Minute)
	lapsedHeld := now.Add(-15 * time.Minute)

	seatMap := NewSeatMap(1, 4)
	seatMap["A1"] = SeatState{Status: SeatHeld, BookingID: &bookingID, HeldAt: &freshHeld}
	seatMap["A2"] = SeatState{Status: SeatHeld, BookingID: &bookingID, HeldAt: &lapsedHeld}
	seatMap["A3"] = SeatState{Status: SeatSold, BookingID: &bookingID}

	show := &Show{
		ID:           uuid.New(),
		MovieID:      "603",
		Screen:       "Screen 1",
		StartTime:    now.Add(2 * time.Hour),
		PricePerSeat: 10,
		SeatMap:      seatMap,
	}
	repo.shows[show.ID] = show

	svc := NewService(repo, &fakeResolver{}, passthroughCache{}, &capturePublisher{}, clock.NewFixed(now), testConfig(), logger.New())

	detail, err := svc.GetShow(ctx, show.ID)
	if err != nil {
		t.Fatalf("GetShow: %v", err)
	}

	want := map[string]string{
		"A1": "unavailable", // live hold
		"A2": "available",   // hold lapsed past the TTL
		"A3": "unavailable", // sold
		"A4": "available",   // free
	}
	for label, expected := range want {
		if detail.Seats[label] != expected {
			t.Errorf("seat %s = %s, want %s", label, detail.Seats[label], expected)
		}
	}
	if detail.Counts.Free != 2 {
		t.Errorf("free count = %d, want 2", detail.Counts.Free)
	}
}

func TestGetShowtimesGroupsByDate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	repo := newFakeRepo()
	for _, start := range []time.Time{
		now.Add(3 * time.Hour),  // same day
		now.Add(5 * time.Hour),  // same day
		now.Add(27 * time.Hour), // next day
	} {
		show := &Show{ID: uuid.New(), MovieID: "603", Screen: "S1", StartTime: start, PricePerSeat: 10, SeatMap: NewSeatMap(1, 1)}
		repo.shows[show.ID] = show
	}

	svc := NewService(repo, &fakeResolver{}, passthroughCache{}, &capturePublisher{}, clock.NewFixed(now), testConfig(), logger.New())

	showtimes, err := svc.GetShowtimes(ctx, "603")
	if err != nil {
		t.Fatalf("GetShowtimes: %v", err)
	}
	if len(showtimes.Dates) != 2 {
		t.Fatalf("dates = %d, want 2", len(showtimes.Dates))
	}
	if len(showtimes.Dates["2026-08-30"]) != 2 {
		t.Errorf("shows on 2026-08-30 = %d, want 2", len(showtimes.Dates["2026-08-30"]))
	}
	if len(showtimes.Dates["2026-08-31"]) != 1 {
		t.Errorf("shows on 2026-08-31 = %d, want 1", len(showtimes.Dates["2026-08-31"]))
	}
}
