package movietools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elee1766/moviefinder/src/aisdk"
	"github.com/elee1766/moviefinder/src/tmdb"
)

func toolCall(name, args string) *aisdk.ToolCall {
	return &aisdk.ToolCall{ID: "c1", Type: "function", Function: aisdk.FunctionCall{Name: name, Arguments: json.RawMessage(args)}}
}

func TestNewToolsDefaults(t *testing.T) {
	tools, err := NewTools(NewAdapter(&fakeProvider{}, nil), nil)
	require.NoError(t, err)
	require.Len(t, tools, 3)

	byName := map[string]string{}
	for _, tool := range tools {
		byName[tool.GetName()] = tool.GetDescription()
	}
	assert.Equal(t, DefaultDescriptions, byName)
}

func TestNewToolsOverrides(t *testing.T) {
	tools, err := NewTools(NewAdapter(&fakeProvider{}, nil), map[string]Override{
		ToolDiscoverGenre: {Disabled: true},
		ToolSearchMovies:  {Description: "Find films."},
	})
	require.NoError(t, err)
	require.Len(t, tools, 2)
	assert.Equal(t, ToolSearchMovies, tools[0].GetName())
	assert.Equal(t, "Find films.", tools[0].GetDescription())
	assert.Equal(t, ToolMovieDetails, tools[1].GetName())

	_, err = NewTools(NewAdapter(&fakeProvider{}, nil), map[string]Override{"web_fetch": {}})
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestToolsExecute(t *testing.T) {
	p := &fakeProvider{
		movies:  []tmdb.Movie{{Title: "A", ReleaseDate: "2001"}, {Title: "B"}},
		details: &tmdb.Movie{Title: "Inception", ReleaseDate: "2010-07-15", Overview: "Dreams."},
	}
	tools, err := NewTools(NewAdapter(p, nil), nil)
	require.NoError(t, err)
	tb, err := NewToolbox(tools)
	require.NoError(t, err)

	resp, err := tb.ExecuteTool(context.Background(), toolCall(ToolSearchMovies, `{"query":"a"}`))
	require.NoError(t, err)
	assert.Equal(t, "A (2001): ...\nB (????): ...", string(resp.Content))

	for _, args := range []string{`{"movie_id":27205}`, `{"movie_id":"27205"}`} {
		resp, err = tb.ExecuteTool(context.Background(), toolCall(ToolMovieDetails, args))
		require.NoError(t, err)
		assert.Equal(t, "Inception (2010): Dreams.", string(resp.Content), args)
	}

	resp, err = tb.ExecuteTool(context.Background(), toolCall(ToolMovieDetails, `{"movie_id":"abc"}`))
	require.NoError(t, err)
	assert.Equal(t, MsgInvalidIDFormat, string(resp.Content))

	resp, err = tb.ExecuteTool(context.Background(), toolCall(ToolMovieDetails, `{"movie_id":-5}`))
	require.NoError(t, err)
	assert.Equal(t, MsgInvalidID, string(resp.Content))
}

func TestToolsEmptyResults(t *testing.T) {
	tools, err := NewTools(NewAdapter(&fakeProvider{genres: []tmdb.Genre{{ID: 1, Name: "Drama"}}}, nil), nil)
	require.NoError(t, err)
	tb, err := NewToolbox(tools)
	require.NoError(t, err)

	resp, err := tb.ExecuteTool(context.Background(), toolCall(ToolDiscoverGenre, `{"genre":"drama"}`))
	require.NoError(t, err)
	assert.Equal(t, MsgNoResults, string(resp.Content))

	resp, err = tb.ExecuteTool(context.Background(), toolCall(ToolSearchMovies, `{}`))
	require.NoError(t, err)
	assert.True(t, resp.IsError)
}

func TestMovieIDSchema(t *testing.T) {
	tools, err := NewTools(NewAdapter(&fakeProvider{}, nil), nil)
	require.NoError(t, err)

	for _, tool := range tools {
		if tool.GetName() != ToolMovieDetails {
			continue
		}
		raw, err := json.Marshal(tool.GetParameters())
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"integer"`)
		assert.Contains(t, string(raw), `"movie_id"`)
	}
}

func TestMovieIDUnmarshal(t *testing.T) {
	var in DetailsInput
	require.NoError(t, json.Unmarshal([]byte(`{"movie_id": 603}`), &in))
	assert.Equal(t, MovieID("603"), in.MovieID)

	require.NoError(t, json.Unmarshal([]byte(`{"movie_id": null}`), &in))
	assert.Equal(t, MovieID(""), in.MovieID)

	assert.Error(t, json.Unmarshal([]byte(`{"movie_id": [1]}`), &in))
}
