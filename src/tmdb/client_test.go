package tmdb

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c, err := New(Config{APIKey: "secret", BaseURL: srv.URL, HTTPClient: srv.Client()})
	require.NoError(t, err)
	return c
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestSearchMovies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		assert.Equal(t, "the matrix", r.URL.Query().Get("query"))
		_, _ = io.WriteString(w, `{"page":1,"results":[
			{"id":603,"title":"The Matrix","release_date":"1999-03-30","overview":"A hacker."}
		]}`)
	})

	movies, err := newTestClient(t, mux).SearchMovies(context.Background(), "the matrix")
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, int64(603), movies[0].ID)
	assert.Equal(t, "1999-03-30", movies[0].ReleaseDate)
}

func TestGenresAndDiscover(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/genre/movie/list", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"genres":[{"id":28,"name":"Action"},{"id":35,"name":"Comedy"}]}`)
	})
	mux.HandleFunc("/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "35", r.URL.Query().Get("with_genres"))
		assert.Equal(t, "popularity.desc", r.URL.Query().Get("sort_by"))
		_, _ = io.WriteString(w, `{"results":[{"id":1,"title":"Funny"}]}`)
	})
	c := newTestClient(t, mux)

	genres, err := c.Genres(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Genre{{ID: 28, Name: "Action"}, {ID: 35, Name: "Comedy"}}, genres)

	movies, err := c.DiscoverByGenre(context.Background(), 35)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "Funny", movies[0].Title)
}

func TestMovieDetailsNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/movie/999999999", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"status_code":34,"status_message":"The resource you requested could not be found."}`)
	})

	_, err := newTestClient(t, mux).MovieDetails(context.Background(), 999999999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAPIErrorStatusMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/movie/27205", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"status_code":7,"status_message":"Invalid API key"}`)
	})

	_, err := newTestClient(t, mux).MovieDetails(context.Background(), 27205)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid API key", apiErr.StatusMessage)
	assert.NotErrorIs(t, err, ErrNotFound)
}
