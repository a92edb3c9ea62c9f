// Package movietools turns movie provider calls into the plain text the
// reasoning engine consumes. Provider failures never escape as errors:
// every operation answers with either results or a fixed sentinel sentence.
package movietools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/elee1766/moviefinder/src/tmdb"
)

// Sentinel messages returned in place of results.
const (
	MsgSearchError     = "Error searching movies. Please try again."
	MsgGenresError     = "Error fetching genres. Please try again."
	MsgDiscoverError   = "Error discovering movies. Please try again."
	MsgGenreNotFound   = "Genre '%s' not found."
	MsgInvalidIDFormat = "Invalid movie ID format. Please provide a valid integer ID."
	MsgInvalidID       = "Invalid movie ID. Please provide a positive integer."
	MsgMovieNotFound   = "Movie with ID %d not found. Please check the ID and try again."
	MsgDetailsError    = "Error retrieving details for movie ID %d. Please try again."
	MsgNoResults       = "No matching movies found."
)

const overviewLimit = 200

// Provider is the movie database the adapter reads from.
type Provider interface {
	SearchMovies(ctx context.Context, query string) ([]tmdb.Movie, error)
	Genres(ctx context.Context) ([]tmdb.Genre, error)
	DiscoverByGenre(ctx context.Context, genreID int64) ([]tmdb.Movie, error)
	MovieDetails(ctx context.Context, id int64) (*tmdb.Movie, error)
}

// Adapter exposes the three lookup operations.
type Adapter struct {
	provider Provider
	logger   *slog.Logger
}

// NewAdapter wraps provider.
func NewAdapter(provider Provider, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{provider: provider, logger: logger.With("component", "movietools")}
}

// SearchByText returns one formatted line per matching movie. Zero matches
// is an empty slice.
func (a *Adapter) SearchByText(ctx context.Context, query string) []string {
	movies, err := a.provider.SearchMovies(ctx, query)
	if err != nil {
		a.logger.Warn("search failed", "query", query, "error", err)
		return []string{MsgSearchError}
	}
	return formatList(movies)
}

// DiscoverByCategory resolves the genre name case-insensitively against the
// provider's catalog and lists popular movies in it.
func (a *Adapter) DiscoverByCategory(ctx context.Context, genre string) []string {
	genres, err := a.provider.Genres(ctx)
	if err != nil {
		a.logger.Warn("genre list failed", "error", err)
		return []string{MsgGenresError}
	}

	id, ok := lookupGenre(genres, genre)
	if !ok {
		return []string{fmt.Sprintf(MsgGenreNotFound, genre)}
	}

	movies, err := a.provider.DiscoverByGenre(ctx, id)
	if err != nil {
		a.logger.Warn("discover failed", "genre", genre, "genre_id", id, "error", err)
		return []string{MsgDiscoverError}
	}
	return formatList(movies)
}

// FetchByID looks up one movie. rawID must parse as a positive integer.
func (a *Adapter) FetchByID(ctx context.Context, rawID string) string {
	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil {
		return MsgInvalidIDFormat
	}
	if id <= 0 {
		return MsgInvalidID
	}

	m, err := a.provider.MovieDetails(ctx, id)
	switch {
	case errors.Is(err, tmdb.ErrNotFound):
		return fmt.Sprintf(MsgMovieNotFound, id)
	case err != nil:
		a.logger.Warn("details failed", "movie_id", id, "error", err)
		return fmt.Sprintf(MsgDetailsError, id)
	}

	title := displayTitle(*m)
	year := releaseYear(m.ReleaseDate)
	if year == "" {
		year = "unknown"
	}
	overview := m.Overview
	if overview == "" {
		overview = "No overview available."
	}
	return fmt.Sprintf("%s (%s): %s", title, year, overview)
}

// JoinResults renders a result list as one observation.
func JoinResults(lines []string) string {
	if len(lines) == 0 {
		return MsgNoResults
	}
	return strings.Join(lines, "\n")
}

func lookupGenre(genres []tmdb.Genre, name string) (int64, bool) {
	for _, g := range genres {
		if strings.EqualFold(g.Name, strings.TrimSpace(name)) {
			return g.ID, true
		}
	}
	return 0, false
}

func formatList(movies []tmdb.Movie) []string {
	out := make([]string, 0, len(movies))
	for _, m := range movies {
		out = append(out, formatSummary(m))
	}
	return out
}

// formatSummary renders "Title (YYYY): overview..." with the overview cut
// to its first 200 characters.
func formatSummary(m tmdb.Movie) string {
	year := releaseYear(m.ReleaseDate)
	if year == "" {
		year = "????"
	}
	overview := m.Overview
	if r := []rune(overview); len(r) > overviewLimit {
		overview = string(r[:overviewLimit])
	}
	return fmt.Sprintf("%s (%s): %s...", displayTitle(m), year, overview)
}

func displayTitle(m tmdb.Movie) string {
	if m.Title == "" {
		return "Unknown Title"
	}
	return m.Title
}

func releaseYear(date string) string {
	r := []rune(date)
	if len(r) > 4 {
		r = r[:4]
	}
	return string(r)
}
