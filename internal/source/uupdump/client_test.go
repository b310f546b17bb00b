package uupdump

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/XXcipherX/tiny11-automated/internal/release"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL, Timeout: time.Second}, zap.NewNop())
	c.now = func() time.Time { return time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC) }
	return c
}

func TestCheckListShape(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/listid.php", r.URL.Path)
		require.Equal(t, "Windows 11", r.URL.Query().Get("search"))
		w.Write([]byte(`{"response":{"builds":[
			{"uuid":"u1","title":"Windows 11, version 24H2 (26100.2033)","arch":"amd64","build":"26100.2033"},
			{"uuid":"u2","title":"Windows 11 Insider Preview 26220.1 (rs_prerelease)","arch":"amd64","build":"26220.1"},
			{"uuid":"u3","title":"Windows 11, version 24H2 (26100.2033)","arch":"arm64","build":"26100.2033"},
			{"uuid":"u4","title":"Windows 10, version 22H2","arch":"amd64","build":"19045.1"}
		]}}`))
	})

	got, err := c.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, "u1", got[0].BuildID)
	require.Equal(t, "24H2", got[0].Version)
	require.Equal(t, release.ChannelRetail, got[0].Channel)
	require.Equal(t, "https://uupdump.net/download.php?id=u1&pack=en-us&edition=professional", got[0].ISOURL)

	require.Equal(t, "u2", got[1].BuildID)
	require.Equal(t, release.ChannelInsider, got[1].Channel)
	require.Equal(t, release.VersionInsiderPreview, got[1].Version)
}

func TestCheckMappingShape(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"response":{"builds":{
			"key-b":{"uuid":"u2","title":"Windows 11 22H2 (22621.100)","arch":"amd64","build":"22621.100"},
			"key-a":{"uuid":"u1","title":"Windows 11 24H2 (26100.1)","arch":"amd64","build":"26100.1"}
		}}}`))
	})

	got, err := c.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Mapping entries come back in key order.
	require.Equal(t, "u1", got[0].BuildID)
	require.Equal(t, "u2", got[1].BuildID)
}

func TestCheckUnexpectedShapeIsEmptyNotError(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"response":{"builds":"oops"}}`))
	})

	got, err := c.Check(context.Background())
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestCheckCapsResults(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"response":{"builds":[
			{"uuid":"u1","title":"Windows 11 24H2","arch":"amd64","build":"26100.1"},
			{"uuid":"u2","title":"Windows 11 24H2","arch":"amd64","build":"26100.2"},
			{"uuid":"u3","title":"Windows 11 24H2","arch":"amd64","build":"26100.3"}
		]}}`))
	})
	c.cfg.MaxResults = 2

	got, err := c.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestCheckServerErrorIsError(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Check(context.Background())
	require.Error(t, err)
}

func TestCheckMissingUUIDGetsFallbackID(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"response":{"builds":[
			{"title":"Windows 11 24H2","arch":"amd64","build":"26100.1"}
		]}}`))
	})

	got, err := c.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotEmpty(t, got[0].BuildID)
}
