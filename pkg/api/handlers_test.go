package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/richard-senior/apex/pkg/espn"
	"github.com/richard-senior/apex/pkg/store"
	"github.com/richard-senior/apex/pkg/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const matchBody = `{
	"homeName": "Arsenal",
	"awayName": "Chelsea",
	"sport": "soccer",
	"eventId": "100",
	"homeStats": {"record": "10-2-3", "news": []},
	"awayStats": {"record": "5-4-6", "news": []}
}`

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	routes := map[string]string{
		"/soccer/eng.1/teams/1":          `{"team":{"id":"1","displayName":"Arsenal","record":{"items":[{"summary":"10-2-3"}]}}}`,
		"/soccer/eng.1/teams/2":          `{"team":{"id":"2","displayName":"Chelsea","record":{"items":[{"summary":"5-4-6"}]}}}`,
		"/soccer/eng.1/teams/1/schedule": `{"events":[]}`,
		"/soccer/eng.1/teams/2/schedule": `{"events":[]}`,
		"/soccer/eng.1/news":             `{"articles":[]}`,
		"/soccer/eng.1/summary": `{"header":{"id":"100","competitions":[{"date":"2025-03-15T20:00Z","status":{"type":{"state":"pre"}},"competitors":[
			{"id":"1","homeAway":"home","team":{"id":"1","displayName":"Arsenal"}},
			{"id":"2","homeAway":"away","team":{"id":"2","displayName":"Chelsea"}}]}]},"headToHeadGames":[]}`,
		"/soccer/eng.1/scoreboard": `{"events":[{"id":"100","date":"2025-03-15T20:00Z","status":{"type":{"state":"pre"}},"competitions":[{"competitors":[
			{"id":"1","homeAway":"home","team":{"id":"1","displayName":"Arsenal"}},
			{"id":"2","homeAway":"away","team":{"id":"2","displayName":"Chelsea"}}]}]}]}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T, withStore bool) (http.Handler, *tools.Toolbox) {
	t.Helper()
	upstream := newUpstream(t)
	client := espn.NewClient(upstream.URL, espn.NewMemoryCache())
	client.HTTP = upstream.Client()

	var st *store.Store
	if withStore {
		var err error
		st, err = store.Open(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
	}
	tb, err := tools.NewToolbox(nil, st, client)
	require.NoError(t, err)
	return NewRouter(NewHandler(tb), []string{"http://localhost:3000"}, 5*time.Second), tb
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthCheck(t *testing.T) {
	h, _ := newTestRouter(t, true)
	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	out := decode(t, rec)
	assert.Equal(t, "healthy", out["status"])
	assert.Equal(t, true, out["history"])
}

func TestPredictAndHistory(t *testing.T) {
	h, tb := newTestRouter(t, true)

	rec := do(t, h, http.MethodPost, "/api/predict", matchBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, "Arsenal to Win", out["prediction"])
	id, _ := out["recordId"].(string)
	require.NotEmpty(t, id)

	rec = do(t, h, http.MethodPost, "/api/predict?store=false", matchBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, decode(t, rec), "recordId")

	recs, err := tb.Store.RecentPredictions(10)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	rec = do(t, h, http.MethodGet, "/api/predictions/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Arsenal", decode(t, rec)["homeName"])

	rec = do(t, h, http.MethodGet, "/api/predictions?eventId=100&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, decode(t, rec)["count"])

	rec = do(t, h, http.MethodGet, "/api/predictions?eventId=999", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, decode(t, rec)["count"])
}

func TestPredictRejectsBadInput(t *testing.T) {
	h, _ := newTestRouter(t, true)

	rec := do(t, h, http.MethodPost, "/api/predict", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/predict", `{"awayName":"B","sport":"soccer"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "home")

	rec = do(t, h, http.MethodGet, "/api/predictions?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictionNotFound(t *testing.T) {
	h, _ := newTestRouter(t, true)
	rec := do(t, h, http.MethodGet, "/api/predictions/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryWithoutStore(t *testing.T) {
	h, _ := newTestRouter(t, false)

	rec := do(t, h, http.MethodGet, "/api/predictions", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/predict", matchBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, decode(t, rec), "recordId")
}

func TestLeagues(t *testing.T) {
	h, _ := newTestRouter(t, false)
	rec := do(t, h, http.MethodGet, "/api/leagues", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var leagues []espn.League
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &leagues))
	assert.Len(t, leagues, len(espn.Leagues))
}

func TestFixtures(t *testing.T) {
	h, _ := newTestRouter(t, true)

	rec := do(t, h, http.MethodGet, "/api/fixtures/eng.1?date=2025-03-15", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var fixtures []espn.Fixture
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fixtures))
	require.Len(t, fixtures, 1)
	assert.Equal(t, "Arsenal", fixtures[0].Home.Name)

	rec = do(t, h, http.MethodGet, "/api/fixtures/eng.1?date=tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/fixtures/moon.1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFixturePrediction(t *testing.T) {
	h, tb := newTestRouter(t, true)

	rec := do(t, h, http.MethodGet, "/api/fixtures/eng.1/100/prediction", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	result := out["result"].(map[string]any)
	assert.NotEmpty(t, result["prediction"])
	assert.NotEmpty(t, result["recordId"])

	recs, err := tb.Store.PredictionsForEvent("100", 5)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	// the summary endpoint has nothing for this league
	rec = do(t, h, http.MethodGet, "/api/fixtures/usa.1/100/prediction", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestRouter(t, false)
	req := httptest.NewRequest(http.MethodOptions, "/api/predict", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
