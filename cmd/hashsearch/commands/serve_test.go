package commands

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgaillard/hashsearch"
	hsprom "github.com/mgaillard/hashsearch/metrics/prometheus"
	"github.com/mgaillard/hashsearch/source"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	mc, err := hsprom.NewCollector(reg, "hashsearch")
	require.NoError(t, err)

	s, err := hashsearch.New[uint64](hashsearch.BackendBruteForce, hashsearch.WithMetricsCollector(mc))
	require.NoError(t, err)
	_, err = s.Load(context.Background(), source.Bytes("mem", []byte("0 1 7 18446744073709551615")))
	require.NoError(t, err)

	srv := httptest.NewServer(NewHandler(s, 1, reg))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestHandler_Search(t *testing.T) {
	srv := newTestServer(t)

	code, body := get(t, srv.URL+"/search?q=7&q=0")
	require.Equal(t, http.StatusOK, code)

	var resp []searchResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "0", resp[0].Query)
	assert.Equal(t, []matchRecord{{Hash: "0", Distance: 0}, {Hash: "1", Distance: 1}}, resp[0].Matches)
	assert.Equal(t, "7", resp[1].Query)

	code, body = get(t, srv.URL+"/search?q=18446744073709551615&t=0")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, []matchRecord{{Hash: "18446744073709551615", Distance: 0}}, resp[0].Matches)
}

func TestHandler_BadRequests(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/search", "/search?q=abc", "/search?q=1&t=x", "/search?q=1&t=-1"} {
		code, _ := get(t, srv.URL+path)
		assert.Equal(t, http.StatusBadRequest, code, path)
	}
}

func TestHandler_InfoAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	code, body := get(t, srv.URL+"/info")
	require.Equal(t, http.StatusOK, code)
	var info map[string]any
	require.NoError(t, json.Unmarshal(body, &info))
	assert.Equal(t, "bruteforce", info["backend"])
	assert.Equal(t, "loaded", info["state"])

	get(t, srv.URL+"/search?q=1")
	code, body = get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "hashsearch_population_size 4")
	assert.Contains(t, string(body), `hashsearch_operations_total{op="batch_search",status="success"} 1`)
}
