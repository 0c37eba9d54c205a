package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"cinebook/internal/movies"
	"cinebook/internal/shared/config"
	"cinebook/internal/shared/database"
	"cinebook/internal/shows"
	"cinebook/internal/users"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Cinebook Database Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"bookings",
		"shows",
		"movies",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll seeds users, movie snapshots and upcoming shows.
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	if err := s.SeedUsers(ctx); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	movieIDs, err := s.SeedMovies(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed movies: %w", err)
	}

	if err := s.SeedShows(ctx, movieIDs); err != nil {
		return fmt.Errorf("failed to seed shows: %w", err)
	}

	return nil
}

func (s *Seeder) SeedUsers(ctx context.Context) error {
	fmt.Println("  Seeding users...")

	seedUsers := []struct {
		firstName string
		lastName  string
		email     string
		password  string
		role      users.Role
	}{
		{"Admin", "User", "admin@cinebook.local", "admin123", users.RoleAdmin},
		{"Maya", "Iyer", "maya@example.com", "password123", users.RoleUser},
		{"Leo", "Fernandes", "leo@example.com", "password123", users.RoleUser},
	}

	for _, u := range seedUsers {
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user := &users.User{
			ID:        uuid.New(),
			FirstName: u.firstName,
			LastName:  u.lastName,
			Email:     u.email,
			Password:  string(hashed),
			Role:      u.role,
		}
		if err := s.db.PostgreSQL.WithContext(ctx).Create(user).Error; err != nil {
			return err
		}
		fmt.Printf("    Created %s (%s)\n", u.email, u.role)
	}
	return nil
}

func (s *Seeder) SeedMovies(ctx context.Context) ([]string, error) {
	fmt.Println("  Seeding movie snapshots...")

	now := time.Now().UTC()
	seedMovies := []movies.Movie{
		{
			ID:          "603",
			Title:       "The Matrix",
			Overview:    "A computer hacker learns about the true nature of reality.",
			ReleaseDate: "1999-03-31",
			Runtime:     136,
			Genres:      []string{"Action", "Science Fiction"},
			Cast:        []string{"Keanu Reeves", "Laurence Fishburne", "Carrie-Anne Moss"},
			Rating:      8.2,
			VoteCount:   24000,
			Popularity:  85.5,
			FetchedAt:   now,
		},
		{
			ID:          "27205",
			Title:       "Inception",
			Overview:    "A thief who steals corporate secrets through dream-sharing technology.",
			ReleaseDate: "2010-07-16",
			Runtime:     148,
			Genres:      []string{"Action", "Science Fiction", "Adventure"},
			Cast:        []string{"Leonardo DiCaprio", "Joseph Gordon-Levitt", "Elliot Page"},
			Rating:      8.4,
			VoteCount:   34000,
			Popularity:  92.1,
			FetchedAt:   now,
		},
	}

	ids := make([]string, 0, len(seedMovies))
	for i := range seedMovies {
		if err := s.db.PostgreSQL.WithContext(ctx).Create(&seedMovies[i]).Error; err != nil {
			return nil, err
		}
		ids = append(ids, seedMovies[i].ID)
		fmt.Printf("    Created movie %s (%s)\n", seedMovies[i].ID, seedMovies[i].Title)
	}
	return ids, nil
}

func (s *Seeder) SeedShows(ctx context.Context, movieIDs []string) error {
	fmt.Println("  Seeding shows...")

	base := time.Now().UTC().Truncate(time.Hour).Add(24 * time.Hour)
	screens := []string{"Screen 1", "Screen 2"}

	for i, movieID := range movieIDs {
		for day := 0; day < 3; day++ {
			for slot, hour := range []int{14, 19} {
				show := &shows.Show{
					ID:           uuid.New(),
					MovieID:      movieID,
					Screen:       screens[(i+slot)%len(screens)],
					StartTime:    base.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour),
					PricePerSeat: 12.50,
					SeatMap:      shows.NewSeatMap(shows.DefaultRows, shows.DefaultSeatsPerRow),
				}
				if err := s.db.PostgreSQL.WithContext(ctx).Create(show).Error; err != nil {
					return err
				}
			}
		}
		fmt.Printf("    Created 6 shows for movie %s\n", movieID)
	}
	return nil
}
