package movietools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	jsonschema "github.com/swaggest/jsonschema-go"

	"github.com/elee1766/moviefinder/src/agent"
	"github.com/elee1766/moviefinder/src/schema"
)

// Tool names as advertised to the reasoning engine.
const (
	ToolSearchMovies  = "search_movies"
	ToolDiscoverGenre = "discover_genre"
	ToolMovieDetails  = "movie_details"
)

// ErrUnknownTool is returned when an override names a tool that does not exist.
var ErrUnknownTool = errors.New("unknown tool")

// DefaultDescriptions maps each tool to the capability summary shown to the
// reasoning engine.
var DefaultDescriptions = map[string]string{
	ToolSearchMovies:  "Search movies by name or keywords.",
	ToolDiscoverGenre: "Discover popular movies by genre.",
	ToolMovieDetails:  "Get movie details by TMDB ID.",
}

// Names returns the tool names in a stable order.
func Names() []string {
	names := make([]string, 0, len(DefaultDescriptions))
	for name := range DefaultDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type SearchInput struct {
	Query string `json:"query" required:"true" description:"Movie title or keywords to search for" validate:"required"`
}

type DiscoverInput struct {
	Genre string `json:"genre" required:"true" description:"Genre name, for example Action, Comedy or Science Fiction" validate:"required"`
}

type DetailsInput struct {
	MovieID MovieID `json:"movie_id" required:"true" description:"Numeric TMDB movie id"`
}

// MovieID accepts either a JSON number or a JSON string. Models send both.
type MovieID string

func (m *MovieID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = MovieID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("movie_id must be a number or a string")
	}
	*m = MovieID(n.String())
	return nil
}

// JSONSchema describes the accepted shapes to the reasoning engine.
func (MovieID) JSONSchema() (jsonschema.Schema, error) {
	return *schema.CreateUnionSchema("Numeric TMDB movie id", jsonschema.Integer, jsonschema.String), nil
}

// Override adjusts one tool of the set.
type Override struct {
	Disabled    bool
	Description string
}

// NewTools builds the movie tool set on top of adapter. Overrides naming a
// tool outside the set are rejected.
func NewTools(adapter *Adapter, overrides map[string]Override) ([]agent.Tool, error) {
	for name := range overrides {
		if _, ok := DefaultDescriptions[name]; !ok {
			return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownTool, name, strings.Join(Names(), ", "))
		}
	}

	describe := func(name string) string {
		if o, ok := overrides[name]; ok && o.Description != "" {
			return o.Description
		}
		return DefaultDescriptions[name]
	}

	all := []agent.Tool{
		agent.MustNewGenericTool(ToolSearchMovies, describe(ToolSearchMovies),
			func(ctx context.Context, in SearchInput) (string, error) {
				return JoinResults(adapter.SearchByText(ctx, in.Query)), nil
			}),
		agent.MustNewGenericTool(ToolDiscoverGenre, describe(ToolDiscoverGenre),
			func(ctx context.Context, in DiscoverInput) (string, error) {
				return JoinResults(adapter.DiscoverByCategory(ctx, in.Genre)), nil
			}),
		agent.MustNewGenericTool(ToolMovieDetails, describe(ToolMovieDetails),
			func(ctx context.Context, in DetailsInput) (string, error) {
				return adapter.FetchByID(ctx, string(in.MovieID)), nil
			}),
	}

	tools := make([]agent.Tool, 0, len(all))
	for _, t := range all {
		if overrides[t.GetName()].Disabled {
			continue
		}
		tools = append(tools, t)
	}
	return tools, nil
}

// NewToolbox registers tools into a fresh toolbox.
func NewToolbox(tools []agent.Tool) (*agent.DefaultToolbox, error) {
	tb := agent.NewToolbox[agent.Tool]()
	for _, t := range tools {
		if err := tb.RegisterTool(t); err != nil {
			return nil, err
		}
	}
	return tb, nil
}
