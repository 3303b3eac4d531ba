package viewer

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshharrison/critpath/internal/graph"
	"github.com/joshharrison/critpath/internal/reporter"
)

func makeReport() *reporter.Report {
	return &reporter.Report{
		ID:           "sta-test",
		Name:         "test.txt",
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		TotalDelay:   1.0,
		DisplayScale: 0.5,
		CriticalPath: []string{"a", "b", "o"},
		Components: []reporter.ComponentTiming{
			{ID: "a", Type: "INPUT", IsCritical: true},
			{ID: "c", Type: "INPUT"},
			{ID: "b", Type: "ADD", Delay: 1.0, Arrival: 1.0, Level: 1, IsCritical: true},
			{ID: "o", Type: "OUTPUT", Arrival: 1.0, Level: 2, IsCritical: true},
		},
		Edges: []graph.Edge{{From: "a", To: "b"}, {From: "c", To: "b"}, {From: "b", To: "o"}},
	}
}

func TestToGraph(t *testing.T) {
	g := toGraph(makeReport())

	require.Len(t, g.Nodes, 4)
	require.Len(t, g.Edges, 3)
	assert.True(t, g.Edges[0].IsCritical)
	assert.False(t, g.Edges[1].IsCritical)
	assert.True(t, g.Edges[2].IsCritical)
	assert.Equal(t, 0.5, g.Metadata.TotalDelay)
	assert.Equal(t, 0.5, g.Nodes[2].Delay)
	assert.Equal(t, "2026-01-02T03:04:05Z", g.Metadata.CreatedAt)
}

func TestGetGraph_NotLoaded(t *testing.T) {
	srv := httptest.NewServer(Handler(nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/graph")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPostThenGetGraph(t *testing.T) {
	srv := httptest.NewServer(Handler(nil))
	defer srv.Close()

	require.NoError(t, PostReport(srv.URL, makeReport()))

	resp, err := http.Get(srv.URL + "/graph")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var g Graph
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&g))
	assert.Equal(t, []string{"a", "b", "o"}, g.CriticalPath)
	assert.Equal(t, "sta-test", g.Metadata.ID)
}

func TestPostGraph_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(Handler(nil))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/graph", "application/json", bytes.NewBufferString("{nope"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGraph_MethodNotAllowed(t *testing.T) {
	srv := httptest.NewServer(Handler(nil))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/graph", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestIndexPage(t *testing.T) {
	srv := httptest.NewServer(Handler(makeReport()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "<title>test.txt - critpath</title>")
	assert.Contains(t, string(body), "vis.Network")

	missing, err := http.Get(srv.URL + "/favicon.ico")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestIsPortOpen(t *testing.T) {
	srv := httptest.NewServer(Handler(nil))
	defer srv.Close()

	assert.True(t, IsPortOpen(strings.TrimPrefix(srv.URL, "http://")))
}
