package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"screenviz/adapters/render"
	"screenviz/app"
	"screenviz/domain/dataset"
	"screenviz/internal"
	"screenviz/ui/middleware"
)

func newResultsServer(t *testing.T) *ResultsServer {
	t.Helper()
	return newResultsServerWithLogger(t, internal.NewNopLogger())
}

func newResultsServerWithLogger(t *testing.T, logger *internal.Logger) *ResultsServer {
	t.Helper()
	sgrna := dataset.NewTable("run.sgrna_results.tsv",
		[]string{"sgrna", "gene", "log2fc", "pvalue_twosided", "fdr", "base"},
		[][]string{
			{"sg1", "KRAS", "2.5", "0.0001", "0.001", "500"},
			{"sg2", "KRAS", "-1.5", "0.001", "0.01", "300"},
			{"sg3", "non-targeting", "0.1", "0.5", "0.9", "100"},
			{"sg4", "MYC", "0.4", "0.2", "0.4", "0"},
		})
	gene := dataset.NewTable("run.gene_results.tsv",
		[]string{"gene", "log2fc", "pvalue", "fdr"},
		[][]string{
			{"KRAS", "2", "0.0001", "0.001"},
			{"MYC", "0.4", "0.2", "0.4"},
			{"amalgam_1", "-3", "0.001", "0.01"},
		})
	dash, err := app.NewResultsDashboard(sgrna, gene, "non-targeting", "amalgam")
	require.NoError(t, err)

	s, err := NewResultsServer(dash, render.NewChartRenderer(), ResultsServerConfig{GinMode: "test", SGRNAFile: sgrna.Source, GeneFile: gene.Source}, logger)
	require.NoError(t, err)
	return s
}

func recordRequest(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	return recordRequest(h, httptest.NewRequest(http.MethodGet, target, nil))
}

func TestResultsServer_Index(t *testing.T) {
	s := newResultsServer(t)
	rec := get(t, s.Handler(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "CRISPR Screen Results Dashboard")
	assert.Contains(t, body, "run.sgrna_results.tsv")
	assert.Contains(t, body, `data-plot="ma"`)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestResultsServer_Plots(t *testing.T) {
	s := newResultsServer(t)
	for _, path := range []string{"/api/sgrna/volcano.svg", "/api/sgrna/ma.svg", "/api/gene/volcano.svg?threshold=0.05&clamp=5&use_fdr=false"} {
		rec := get(t, s.Handler(), path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "<svg")
	}

	rec := get(t, s.Handler(), "/api/gene/volcano.svg?clamp=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResultsServer_Table(t *testing.T) {
	s := newResultsServer(t)
	rec := get(t, s.Handler(), "/api/sgrna/table?threshold=0.05")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Headers []string            `json:"headers"`
		Rows    []map[string]string `json:"rows"`
		Count   int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "sg1", resp.Rows[0]["sgrna"])
	assert.Contains(t, resp.Headers, "base")

	rec = get(t, s.Handler(), "/api/gene/table")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
}

func TestResultsServer_Metrics(t *testing.T) {
	s := newResultsServer(t)
	get(t, s.Handler(), "/health")
	rec := get(t, s.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `screenviz_http_requests_total{dashboard="results",method="GET",route="/health",status="200"} 1`)
}

func TestRequestIDPassthrough(t *testing.T) {
	s := newResultsServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(middleware.RequestIDHeader))
}

func TestFindFreePort(t *testing.T) {
	port, err := FindFreePort("127.0.0.1", 18050)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, port, 18050)
	assert.Less(t, port, 18050+maxPortProbes)
}

func TestResultsServer_RequestLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := newResultsServerWithLogger(t, internal.NewZapLogger(internal.LogLevelDebug, zap.New(core)))

	req := httptest.NewRequest(http.MethodGet, "/api/gene/table?threshold=0.05", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	rec := recordRequest(s.Handler(), req)
	require.Equal(t, http.StatusOK, rec.Code)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "results", fields["dashboard"])
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/api/gene/table", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.Equal(t, "abc-123", fields["request_id"])
}
