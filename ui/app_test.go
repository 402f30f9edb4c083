package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gohypo/adapters/render"
	"gohypo/adapters/transition"
	"gohypo/app"
	"gohypo/domain/run"
	"gohypo/internal"
	"gohypo/internal/testkit"
	"gohypo/ports"
)

func testApp(t *testing.T) (*App, *testkit.InMemoryRunRepository) {
	t.Helper()
	repo := testkit.NewInMemoryRunRepository()
	logger := internal.NewLogger(internal.LogLevelError)
	svc := app.NewAnalysisService(transition.NewEngine(), repo, logger, 0)
	renderer, err := render.NewRenderer(render.FormatPNG)
	require.NoError(t, err)
	return NewApp(Config{FigureFormat: "png"}, svc, repo, renderer), repo
}

func archiveFixtureRun(t *testing.T, repo *testkit.InMemoryRunRepository) *run.AnalysisRun {
	t.Helper()
	cfg := testkit.DefaultConfig()
	ds, err := testkit.Generate(cfg)
	require.NoError(t, err)

	logger := internal.NewLogger(internal.LogLevelError)
	svc := app.NewAnalysisService(transition.NewEngine(), repo, logger, 0)
	res, err := svc.Run(context.Background(), app.AnalysisRequest{Table: ds.Table("result.tsv"), Archive: true})
	require.NoError(t, err)
	return res.Run
}

func multipartTable(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	cfg := testkit.DefaultConfig()
	ds, err := testkit.Generate(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "result.tsv")
	require.NoError(t, testkit.WriteTSV(path, ds))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "result.tsv")
	require.NoError(t, err)
	_, err = fw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHandleHealth(t *testing.T) {
	a, _ := testApp(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestHandleAnalyze_UploadAndArchive(t *testing.T) {
	a, repo := testApp(t)
	body, contentType := multipartTable(t)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var result app.AnalysisResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 6, result.Estimated)
	assert.Equal(t, 0, result.Skipped)
	assert.True(t, result.Archived)
	assert.Equal(t, "result.tsv", result.Run.Source)

	stored, err := repo.GetByID(context.Background(), result.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Run.Fingerprint, stored.Fingerprint)
}

func TestHandleAnalyze_ArchiveOptOut(t *testing.T) {
	a, repo := testApp(t)
	body, contentType := multipartTable(t)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze?archive=false", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	listed, err := repo.List(context.Background(), ports.RunFilters{})
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestHandleAnalyze_MissingFile(t *testing.T) {
	a, _ := testApp(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleAnalyze_UnreadableTable(t *testing.T) {
	a, _ := testApp(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "broken.tsv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("# T (K)\tEnergy (eV)\n1.0\t-1.9\n2.0\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestHandleGetRun(t *testing.T) {
	a, repo := testApp(t)
	rec := archiveFixtureRun(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+rec.ID.String(), nil)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got run.AnalysisRun
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Fingerprint, got.Fingerprint)
	require.NotNil(t, got.Table)
	assert.Len(t, got.Table.Curves, 6)
}

func TestHandleGetRun_NotFound(t *testing.T) {
	a, _ := testApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/no-such-run", nil)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleListRuns(t *testing.T) {
	a, repo := testApp(t)
	archiveFixtureRun(t, repo)
	archiveFixtureRun(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var payload struct {
		Runs  []ports.RunSummary `json:"runs"`
		Count int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, 2, payload.Count)
	require.Len(t, payload.Runs, 2)
	assert.Equal(t, "result.tsv", payload.Runs[0].Source)

	req = httptest.NewRequest(http.MethodGet, "/api/runs?source=other.tsv", nil)
	rr = httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, 0, payload.Count)
}

func TestHandleDeleteRun(t *testing.T) {
	a, repo := testApp(t)
	rec := archiveFixtureRun(t, repo)

	req := httptest.NewRequest(http.MethodDelete, "/api/runs/"+rec.ID.String(), nil)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/runs/"+rec.ID.String(), nil)
	rr = httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleRunReport(t *testing.T) {
	a, repo := testApp(t)
	rec := archiveFixtureRun(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/runs/"+rec.ID.String()+"/report", nil)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "Critical point report")
	assert.Contains(t, rr.Body.String(), "<table>")
}

func TestHandleRunFigure(t *testing.T) {
	a, repo := testApp(t)
	rec := archiveFixtureRun(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/runs/"+rec.ID.String()+"/figure", nil)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "image/png")
	body := rr.Body.Bytes()
	require.Greater(t, len(body), 8)
	assert.Equal(t, "PNG", string(body[1:4]))
}
