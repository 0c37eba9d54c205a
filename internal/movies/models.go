package movies

import (
	"time"
)

// Movie is the locally persisted snapshot of a catalog title. The primary
// key is the upstream catalog id, so refreshes are upserts.
type Movie struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Overview    string    `json:"overview" gorm:"type:text"`
	PosterURL   string    `json:"poster_url"`
	BackdropURL string    `json:"backdrop_url"`
	TrailerURL  string    `json:"trailer_url"`
	ReleaseDate string    `json:"release_date"`
	Runtime     int       `json:"runtime"`
	Genres      []string  `json:"genres" gorm:"serializer:json"`
	Cast        []string  `json:"cast" gorm:"serializer:json;column:cast_members"`
	Rating      float64   `json:"rating"`
	VoteCount   int       `json:"vote_count"`
	Popularity  float64   `json:"popularity"`
	FetchedAt   time.Time `json:"fetched_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MovieDetail is the read model returned to clients. Stale marks entries
// served from the local snapshot because the catalog was unreachable.
type MovieDetail struct {
	Movie
	Stale bool `json:"stale"`
}

// PopularMovies is the ranked snapshot returned by the popular listing.
type PopularMovies struct {
	Movies    []Movie   `json:"movies"`
	Stale     bool      `json:"stale"`
	FetchedAt time.Time `json:"fetched_at"`
}
