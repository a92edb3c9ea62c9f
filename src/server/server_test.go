package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elee1766/moviefinder/src/session"
)

type fakeChatter struct {
	mu      sync.Mutex
	queries map[string][]string
	resets  []string
	handle  func(ctx context.Context, sid, q string) (string, error)
}

func (f *fakeChatter) Handle(ctx context.Context, sid, q string) (string, error) {
	f.mu.Lock()
	if f.queries == nil {
		f.queries = map[string][]string{}
	}
	f.queries[sid] = append(f.queries[sid], q)
	f.mu.Unlock()
	if f.handle != nil {
		return f.handle(ctx, sid, q)
	}
	return "answer to " + q, nil
}

func (f *fakeChatter) Reset(_ context.Context, sid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, sid)
	return nil
}

type httpObservation struct {
	route string
	code  int
}

type fakeObserver struct {
	mu  sync.Mutex
	obs []httpObservation
}

func (f *fakeObserver) ObserveHTTP(route string, code int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obs = append(f.obs, httpObservation{route, code})
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoot(t *testing.T) {
	s := newTestServer(t, Config{Chatter: &fakeChatter{}})
	rec := do(t, s.Handler(), "GET", "/", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Movies Finder API is running!"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Config{Chatter: &fakeChatter{}})
	rec := do(t, s.Handler(), "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChat(t *testing.T) {
	chatter := &fakeChatter{}
	s := newTestServer(t, Config{Chatter: chatter})

	rec := do(t, s.Handler(), "POST", "/chat", `{"query":"funny movies","session_id":"abc"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "answer to funny movies", resp.Response)
	assert.Equal(t, "abc", resp.SessionID)
	assert.Equal(t, []string{"funny movies"}, chatter.queries["abc"])
}

func TestChatSessionResolution(t *testing.T) {
	chatter := &fakeChatter{}
	s := newTestServer(t, Config{Chatter: chatter})

	do(t, s.Handler(), "POST", "/chat", `{"query":"a"}`, nil)
	do(t, s.Handler(), "POST", "/chat", `{"query":"b"}`, map[string]string{SessionHeader: "hdr"})
	do(t, s.Handler(), "POST", "/chat", `{"query":"c","session_id":"body"}`, map[string]string{SessionHeader: "hdr"})

	assert.Equal(t, []string{"a"}, chatter.queries[session.DefaultID])
	assert.Equal(t, []string{"b"}, chatter.queries["hdr"])
	assert.Equal(t, []string{"c"}, chatter.queries["body"])
}

func TestChatBadRequests(t *testing.T) {
	chatter := &fakeChatter{}
	s := newTestServer(t, Config{Chatter: chatter})

	for name, body := range map[string]string{
		"missing query": `{}`,
		"blank query":   `{"query":"   "}`,
		"no body":       ``,
		"malformed":     `{"query":`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, s.Handler(), "POST", "/chat", body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Empty(t, chatter.queries)
}

func TestChatWrongMethod(t *testing.T) {
	s := newTestServer(t, Config{Chatter: &fakeChatter{}})
	rec := do(t, s.Handler(), "GET", "/chat", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestChatTimeout(t *testing.T) {
	chatter := &fakeChatter{handle: func(ctx context.Context, _, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	s := newTestServer(t, Config{Chatter: chatter, RequestTimeout: 20 * time.Millisecond})

	rec := do(t, s.Handler(), "POST", "/chat", `{"query":"slow"}`, nil)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestChatInternalError(t *testing.T) {
	chatter := &fakeChatter{handle: func(context.Context, string, string) (string, error) {
		return "", errors.New("disk on fire")
	}}
	s := newTestServer(t, Config{Chatter: chatter})

	rec := do(t, s.Handler(), "POST", "/chat", `{"query":"x"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}

func TestChatRelaysErrorText(t *testing.T) {
	chatter := &fakeChatter{handle: func(context.Context, string, string) (string, error) {
		return "Error: The reasoning engine is unavailable.", nil
	}}
	s := newTestServer(t, Config{Chatter: chatter})

	rec := do(t, s.Handler(), "POST", "/chat", `{"query":"x"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error: The reasoning engine is unavailable.")
}

func TestReset(t *testing.T) {
	chatter := &fakeChatter{}
	s := newTestServer(t, Config{Chatter: chatter})

	rec := do(t, s.Handler(), "POST", "/reset", `{"session_id":"abc"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Session reset successfully."}`, rec.Body.String())

	rec = do(t, s.Handler(), "POST", "/reset", ``, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"abc", session.DefaultID}, chatter.resets)
}

func TestMetricsRouteAndObserver(t *testing.T) {
	obs := &fakeObserver{}
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	s := newTestServer(t, Config{Chatter: &fakeChatter{}, Observer: obs, Metrics: metrics})

	rec := do(t, s.Handler(), "GET", "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())

	do(t, s.Handler(), "POST", "/chat", `{"query":""}`, nil)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, []httpObservation{
		{"/metrics", http.StatusOK},
		{"/chat", http.StatusBadRequest},
	}, obs.obs)
}

func TestNewRequiresChatter(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestServeWithSessionManager(t *testing.T) {
	mgr := session.NewManager(session.Config{Runner: nil})
	s := newTestServer(t, Config{Chatter: mgr})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/reset", "application/json", strings.NewReader(`{"session_id":"x"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
