package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/XXcipherX/tiny11-automated/internal/release"
	"github.com/XXcipherX/tiny11-automated/internal/track"
)

type stubStore struct {
	state   track.State
	loadErr error
}

func (s *stubStore) Load(context.Context) (track.State, error) {
	if s.loadErr != nil {
		return track.State{}, s.loadErr
	}
	return s.state, nil
}

func (s *stubStore) Save(_ context.Context, state track.State) error {
	s.state = state
	return nil
}

func do(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := NewServer(&stubStore{state: track.NewState()}, zap.NewNop())
	rec := do(t, srv, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestReadyzStoreDown(t *testing.T) {
	t.Parallel()

	srv := NewServer(&stubStore{loadErr: errors.New("boom")}, zap.NewNop())
	rec := do(t, srv, "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListReleases(t *testing.T) {
	t.Parallel()

	state := track.NewState()
	state.Builds["b-1"] = release.Release{BuildID: "b-1", BuildNumber: "26100.1", Version: "24H2"}
	state.Builds["a-1"] = release.Release{BuildID: "a-1", BuildNumber: "22631.3", Version: "23H2"}

	srv := NewServer(&stubStore{state: state}, zap.NewNop())
	rec := do(t, srv, "/v1/releases")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Releases []release.Release `json:"releases"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Releases, 2)
	assert.Equal(t, "a-1", body.Releases[0].BuildID)
	assert.Equal(t, "b-1", body.Releases[1].BuildID)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	last := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	state := track.NewState()
	state.Builds["b-1"] = release.Release{BuildID: "b-1"}
	state.LastCheck = &last
	state.CheckCount = 7

	srv := NewServer(&stubStore{state: state}, zap.NewNop())
	rec := do(t, srv, "/v1/status")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		TrackedBuilds int        `json:"tracked_builds"`
		LastCheck     *time.Time `json:"last_check"`
		CheckCount    int        `json:"check_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.TrackedBuilds)
	assert.Equal(t, 7, body.CheckCount)
	require.NotNil(t, body.LastCheck)
	assert.True(t, body.LastCheck.Equal(last))
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv := NewServer(&stubStore{state: track.NewState()}, zap.NewNop())
	rec := do(t, srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
}
