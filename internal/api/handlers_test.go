package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protocol-parity/parity-go/internal/analysis"
	"github.com/protocol-parity/parity-go/internal/api"
	"github.com/protocol-parity/parity-go/internal/corpus"
	"github.com/protocol-parity/parity-go/internal/domain"
	"github.com/protocol-parity/parity-go/internal/observability"
)

type stubStore struct {
	stats       corpus.Stats
	divergences []map[string]any
	record      map[string]any
	err         error
}

func (s *stubStore) GetStats() (corpus.Stats, error) {
	return s.stats, s.err
}

func (s *stubStore) ListDivergences(limit int) ([]map[string]any, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit > 0 && limit < len(s.divergences) {
		return s.divergences[:limit], nil
	}
	return s.divergences, nil
}

func (s *stubStore) GetDivergence(caseID string) (map[string]any, error) {
	if s.record == nil {
		return nil, errors.New("not found")
	}
	return s.record, nil
}

func newTestServer(t *testing.T, store api.CorpusStore, metrics api.MetricsSource) *httptest.Server {
	t.Helper()
	srv, err := api.New(store, metrics, []string{"*"}, api.OIDCConfig{})
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &stubStore{}, nil)

	resp, err := http.Get(ts.URL + "/api/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestCorpusStats(t *testing.T) {
	ts := newTestServer(t, &stubStore{
		stats: corpus.Stats{StableCases: 10, Divergences: 2, Crashes: 2, TotalCases: 14},
	}, nil)

	resp, err := http.Get(ts.URL + "/api/v1/corpus/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stats corpus.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 14, stats.TotalCases)
}

func TestCorpusStats_StoreError(t *testing.T) {
	ts := newTestServer(t, &stubStore{err: errors.New("corpus unreadable")}, nil)

	resp, err := http.Get(ts.URL + "/api/v1/corpus/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestListDivergences(t *testing.T) {
	ts := newTestServer(t, &stubStore{
		divergences: []map[string]any{
			{"case_id": "aaaa"},
			{"case_id": "bbbb"},
		},
	}, nil)

	resp, err := http.Get(ts.URL + "/api/v1/divergences")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var records []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	assert.Len(t, records, 2)
}

func TestListDivergences_LimitAndEmpty(t *testing.T) {
	ts := newTestServer(t, &stubStore{
		divergences: []map[string]any{
			{"case_id": "aaaa"},
			{"case_id": "bbbb"},
		},
	}, nil)

	resp, err := http.Get(ts.URL + "/api/v1/divergences?limit=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	var records []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	assert.Len(t, records, 1)

	resp, err = http.Get(ts.URL + "/api/v1/divergences?limit=banana")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Empty corpus serves an empty list, not null.
	empty := newTestServer(t, &stubStore{}, nil)
	resp, err = http.Get(empty.URL + "/api/v1/divergences")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "[]\n", readBody(t, resp))
}

func TestGetDivergence(t *testing.T) {
	ts := newTestServer(t, &stubStore{
		record: map[string]any{"case_id": "deadbeef00000000"},
	}, nil)

	resp, err := http.Get(ts.URL + "/api/v1/divergences/deadbeef00000000")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var record map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	assert.Equal(t, "deadbeef00000000", record["case_id"])
}

func TestGetDivergence_NotFound(t *testing.T) {
	ts := newTestServer(t, &stubStore{}, nil)

	resp, err := http.Get(ts.URL + "/api/v1/divergences/ffffffffffffffff")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	metrics := observability.NewRunMetrics()
	metrics.RecordResult(&analysis.DifferentialResult{
		FuzzCase:   domain.FuzzCase{MethodName: "GetInfo"},
		Equivalent: true,
		AdapterResults: []domain.FuzzResult{
			{AdapterName: "lnd", Success: true, ExecutionTimeMS: 5},
		},
	}, 10*time.Millisecond)

	ts := newTestServer(t, &stubStore{}, metrics)

	resp, err := http.Get(ts.URL + "/api/v1/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var summary observability.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, uint64(1), summary.TotalCases)
}

func TestMetrics_Unconfigured(t *testing.T) {
	ts := newTestServer(t, &stubStore{}, nil)

	resp, err := http.Get(ts.URL + "/api/v1/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, &stubStore{}, nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/corpus/stats", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	var buf [64]byte
	n, _ := resp.Body.Read(buf[:])
	return string(buf[:n])
}
