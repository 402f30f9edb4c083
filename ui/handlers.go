package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gohypo/adapters/table"
	"gohypo/app"
	"gohypo/domain/core"
	"gohypo/domain/run"
	"gohypo/ports"
)

// maxUploadBytes caps table uploads at 32 MiB
const maxUploadBytes = 32 << 20

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze accepts a multipart table upload, runs the analysis and
// returns the run. Pass archive=false to skip the database.
func (a *App) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	tmpPath := filepath.Join(os.TempDir(),
		fmt.Sprintf("gocrit_upload_%d_%s", time.Now().UnixNano(), filepath.Base(header.Filename)))
	dst, err := os.Create(tmpPath)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer os.Remove(tmpPath)

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		respondError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	dst.Close()

	tbl, err := table.NewReader(tmpPath).Read(r.Context())
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("failed to read table: %v", err))
		return
	}
	// Report the uploaded name, not the temp path
	tbl.Source = header.Filename

	archive := a.repo != nil && r.URL.Query().Get("archive") != "false"
	result, err := a.analysis.Run(r.Context(), app.AnalysisRequest{Table: tbl, Archive: archive})
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("analysis failed: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

func (a *App) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if a.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "no archive configured")
		return
	}

	filters := parseRunFilters(r)
	summaries, err := a.repo.List(r.Context(), filters)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list runs: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  summaries,
		"count": len(summaries),
	})
}

func (a *App) handleGetRun(w http.ResponseWriter, r *http.Request) {
	rec, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (a *App) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if a.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "no archive configured")
		return
	}

	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.repo.Delete(r.Context(), id); err != nil {
		if core.IsNotFoundError(err) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to delete run: %v", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleRunReport renders the archived run's markdown report as HTML
func (a *App) handleRunReport(w http.ResponseWriter, r *http.Request) {
	rec, ok := a.loadRun(w, r)
	if !ok {
		return
	}

	md := app.BuildReport(rec)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(renderMarkdown([]byte(md)))
}

// handleRunFigure redraws the archived run's figure and serves it
func (a *App) handleRunFigure(w http.ResponseWriter, r *http.Request) {
	if a.renderer == nil {
		respondError(w, http.StatusServiceUnavailable, "no figure renderer configured")
		return
	}

	rec, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	if rec.Table == nil {
		respondError(w, http.StatusUnprocessableEntity, "archived run has no table data")
		return
	}

	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("gocrit_figure_%s.%s", rec.ID, a.figExt))
	if err := a.renderer.Render(r.Context(), rec.Table, rec, tmpPath); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render figure: %v", err))
		return
	}
	defer os.Remove(tmpPath)

	http.ServeFile(w, r, tmpPath)
}

// loadRun fetches the run in the URL, writing the error response itself
func (a *App) loadRun(w http.ResponseWriter, r *http.Request) (*run.AnalysisRun, bool) {
	if a.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "no archive configured")
		return nil, false
	}

	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	rec, err := a.repo.GetByID(r.Context(), id)
	if err != nil {
		if core.IsNotFoundError(err) {
			respondError(w, http.StatusNotFound, err.Error())
			return nil, false
		}
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load run: %v", err))
		return nil, false
	}
	return rec, true
}

func parseRunFilters(r *http.Request) ports.RunFilters {
	q := r.URL.Query()
	limit := intQueryParam(q.Get("limit"), 50)
	offset := intQueryParam(q.Get("offset"), 0)
	return ports.RunFilters{
		Source: q.Get("source"),
		Limit:  limit,
		Offset: offset,
	}
}

func intQueryParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// renderMarkdown converts report markdown to a standalone HTML page
func renderMarkdown(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(md)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	body := markdown.Render(doc, renderer)

	var page []byte
	page = append(page, []byte("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>Critical point report</title></head>\n<body>\n")...)
	page = append(page, body...)
	page = append(page, []byte("\n</body>\n</html>\n")...)
	return page
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[UI] Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
