package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/user/trimline-cli/api"
	"github.com/user/trimline-cli/db"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingNotifier struct{ n int32 }

func (c *countingNotifier) Notify() { atomic.AddInt32(&c.n, 1) }

type fixture struct {
	db     *sql.DB
	srv    *Server
	jobs   *countingNotifier
	probes int32
}

func newFixture(t *testing.T, probe ProbeFunc) *fixture {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	f := &fixture{db: database, jobs: &countingNotifier{}}
	if probe == nil {
		probe = func(context.Context, string) (float64, error) {
			atomic.AddInt32(&f.probes, 1)
			return 57.6, nil
		}
	}
	f.srv = New(Config{DB: database, Jobs: f.jobs, Probe: probe, Logger: zerolog.Nop()})

	require.NoError(t, db.InsertAsset(database, db.Asset{ID: "a1", Path: "/videos/match.mp4", Title: "Match"}))
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, api.Health{Status: "ok"}, decode[api.Health](t, rec))

	require.NoError(t, f.db.Close())
	rec = f.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAssetInfo_ProbesOnceAndCaches(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/assets/a1/info", "")
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[api.AssetInfo](t, rec)
	assert.Equal(t, 57.6, info.Duration)
	assert.Equal(t, "a1", info.ID)

	rec = f.do(t, http.MethodGet, "/api/assets/a1/info", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.probes))

	a, err := db.SelectAssetByID(f.db, "a1")
	require.NoError(t, err)
	require.NotNil(t, a.Duration)
	assert.Equal(t, 57.6, *a.Duration)
}

func TestAssetInfo_ConcurrentRequestsShareProbe(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	f := newFixture(t, func(context.Context, string) (float64, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 12, nil
	})

	var wg sync.WaitGroup
	codes := make([]int, 5)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = f.do(t, http.MethodGet, "/api/assets/a1/info", "").Code
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, c := range codes {
		assert.Equal(t, http.StatusOK, c)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(5))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}

func TestAssetInfo_Errors(t *testing.T) {
	f := newFixture(t, func(context.Context, string) (float64, error) {
		return 0, errors.New("ffprobe: exit status 1")
	})

	rec := f.do(t, http.MethodGet, "/api/assets/missing/info", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/assets/a1/info", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "could not probe duration", decode[api.ErrorBody](t, rec).Error)
}

func TestCommitTrim(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/assets/a1/trim", `{"start": 10, "end": 20.5}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	accepted := decode[api.TrimAccepted](t, rec)
	assert.Equal(t, db.StatusPending, accepted.Status)
	assert.NotEmpty(t, accepted.JobID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.jobs.n))

	rec = f.do(t, http.MethodGet, "/api/trims/"+accepted.JobID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	job := decode[api.TrimJob](t, rec)
	assert.Equal(t, "a1", job.AssetID)
	assert.Equal(t, 10.0, job.Start)
	assert.Equal(t, 20.5, job.End)

	rec = f.do(t, http.MethodGet, "/api/assets/a1/trims", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]api.TrimJob](t, rec), 1)
}

func TestCommitTrim_Validation(t *testing.T) {
	f := newFixture(t, nil)
	// Cache the duration so the upper bound is enforced.
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/assets/a1/info", "").Code)

	cases := []struct {
		name string
		body string
		want string
	}{
		{"negative start", `{"start": -1, "end": 5}`, "start must not be negative"},
		{"empty range", `{"start": 5, "end": 5}`, "end must be greater than start"},
		{"inverted", `{"start": 9, "end": 5}`, "end must be greater than start"},
		{"past duration", `{"start": 0, "end": 58}`, "end exceeds duration 57.600"},
		{"bad json", `{"start": `, "invalid request body"},
		{"unknown field", `{"start": 0, "end": 1, "force": true}`, "invalid request body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/assets/a1/trim", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.want, decode[api.ErrorBody](t, rec).Error)
		})
	}
	assert.Zero(t, atomic.LoadInt32(&f.jobs.n))
}

func TestCommitTrim_UnknownAsset(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/api/assets/nope/trim", `{"start": 0, "end": 1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/trims/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAssets(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/api/assets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assets := decode[[]api.AssetInfo](t, rec)
	require.Len(t, assets, 1)
	assert.Equal(t, "Match", assets[0].Title)
}

func TestRateLimit(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer database.Close()
	srv := New(Config{DB: database, RateLimit: 2, Logger: zerolog.Nop()})

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		codes[i] = rec.Code
	}
	assert.Equal(t, []int{200, 200, http.StatusTooManyRequests}, codes)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodGet, "/api/health", "")

	rec := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `trimline_http_requests_total{code="200",method="GET",route="/api/health"}`)
}

func TestClientAgainstServer(t *testing.T) {
	f := newFixture(t, nil)
	ts := httptest.NewServer(f.srv)
	defer ts.Close()

	c := api.NewClient(ts.URL, time.Second).WithHTTPClient(ts.Client())
	require.NoError(t, c.Health(context.Background()))

	info, err := c.Info(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, 57.6, info.Duration)

	accepted, err := c.CommitTrim(context.Background(), "a1", 1, 2)
	require.NoError(t, err)

	job, err := c.TrimStatus(context.Background(), accepted.JobID)
	require.NoError(t, err)
	assert.Equal(t, db.StatusPending, job.Status)

	_, err = c.CommitTrim(context.Background(), "a1", 2, 1)
	assert.ErrorIs(t, err, api.ErrStatus)
}

func TestListenAndServe_ShutsDownOnCancel(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.srv.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
