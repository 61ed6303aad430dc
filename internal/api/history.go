package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/theLastOfCats/mangadock/internal/history"
)

type HistoryHandler struct {
	History *history.Store
}

func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.History.Load())
}

func (h *HistoryHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			JSONError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	writeJSON(w, h.History.RecentReads(limit))
}

// PostHistory records a chapter open and returns the updated log.
func (h *HistoryHandler) PostHistory(w http.ResponseWriter, r *http.Request) {
	var ev history.OpenEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		JSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(ev.SeriesID) == "" {
		JSONError(w, "seriesId is required", http.StatusBadRequest)
		return
	}

	h.History.RecordOpen(ev)
	writeJSON(w, h.History.Load())
}

func (h *HistoryHandler) DeleteSeries(w http.ResponseWriter, r *http.Request) {
	h.History.Remove(r.PathValue("seriesId"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *HistoryHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	h.History.Clear()
	w.WriteHeader(http.StatusNoContent)
}
