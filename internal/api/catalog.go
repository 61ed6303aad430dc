package api

import (
	"net/http"
	"strconv"

	"github.com/theLastOfCats/mangadock/internal/catalog"
)

// DegradedHeader is set on responses built from a fallback value.
const DegradedHeader = "X-Catalog-Degraded"

type CatalogHandler struct {
	Catalog catalog.Client
}

func (h *CatalogHandler) GetHome(w http.ResponseWriter, r *http.Request) {
	res := h.Catalog.FetchHome(r.Context())
	markDegraded(w, res.Degraded)
	writeJSON(w, res.Value)
}

// GetList serves a listing; sort=rating reorders the page by rating.
func (h *CatalogHandler) GetList(w http.ResponseWriter, r *http.Request) {
	res := h.Catalog.FetchList(r.Context(), r.PathValue("type"), pageParam(r))
	if r.URL.Query().Get("sort") == "rating" {
		res.Value.Items = catalog.SortByRating(res.Value.Items)
	}
	markDegraded(w, res.Degraded)
	writeJSON(w, res.Value)
}

func (h *CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	res := h.Catalog.FetchCategories(r.Context())
	markDegraded(w, res.Degraded)
	writeJSON(w, res.Value)
}

func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	res := h.Catalog.FetchByCategory(r.Context(), r.PathValue("slug"), pageParam(r))
	markDegraded(w, res.Degraded)
	writeJSON(w, res.Value)
}

func (h *CatalogHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	res := h.Catalog.FetchSeriesDetail(r.Context(), r.PathValue("id"))
	markDegraded(w, res.Degraded)
	if res.Value == nil {
		JSONError(w, "Series not found", http.StatusNotFound)
		return
	}
	writeJSON(w, res.Value)
}

func (h *CatalogHandler) GetChapter(w http.ResponseWriter, r *http.Request) {
	res := h.Catalog.FetchChapterImages(r.Context(), r.PathValue("id"), r.PathValue("chapterId"))
	markDegraded(w, res.Degraded)
	writeJSON(w, res.Value)
}

func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	res := h.Catalog.Search(r.Context(), r.URL.Query().Get("q"), pageParam(r))
	markDegraded(w, res.Degraded)
	writeJSON(w, res.Value)
}

func markDegraded(w http.ResponseWriter, degraded bool) {
	if degraded {
		w.Header().Set(DegradedHeader, "true")
	}
}

// pageParam reads ?page=, treating anything missing or invalid as 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
