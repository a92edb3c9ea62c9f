package httpkit

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientSetsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	client := NewClient(WithUserAgent("test-agent/2"))
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	DrainAndClose(resp.Body, 1024)

	assert.Equal(t, "test-agent/2", got)
}

func TestNewClientKeepsExplicitUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "caller")

	resp, err := NewClient().Do(req)
	require.NoError(t, err)
	DrainAndClose(resp.Body, 1024)

	assert.Equal(t, "caller", got)
}

func TestNewClientTimeout(t *testing.T) {
	client := NewClient(WithTimeout(2 * time.Second))
	assert.Equal(t, 2*time.Second, client.Timeout)
}

func TestReadErrorBody(t *testing.T) {
	body := io.NopCloser(strings.NewReader("something broke and kept going"))
	assert.Equal(t, "something", ReadErrorBody(body, 9))
	assert.Equal(t, "", ReadErrorBody(nil, 10))
}
