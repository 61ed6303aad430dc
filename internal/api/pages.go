package api

import (
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/theLastOfCats/mangadock/internal/catalog"
	"github.com/theLastOfCats/mangadock/internal/history"
	"github.com/theLastOfCats/mangadock/internal/model"
	"github.com/theLastOfCats/mangadock/internal/templates"
)

// homeRecentLimit is how many recent reads the home page shows.
const homeRecentLimit = 8

type PageHandler struct {
	Catalog   catalog.Client
	History   *history.Store
	Templates *templates.Manager
}

type homeView struct {
	PageTitle string
	Home      model.HomeData
	Recent    []model.HistoryItem
	Degraded  bool
}

type seriesView struct {
	PageTitle string
	SeriesID  string
	Series    *model.Series
	Degraded  bool
}

type historyView struct {
	PageTitle string
	Items     []model.HistoryItem
}

// listingView backs every paged series list: browse lists, categories and search.
type listingView struct {
	PageTitle string
	Heading   string
	Query     string
	Page      model.SeriesPage
	PrevURL   string
	NextURL   string
	Degraded  bool
}

type categoriesView struct {
	PageTitle  string
	Categories []model.Category
	Degraded   bool
}

// listTitles names the browse lists linked from the navigation.
var listTitles = map[string]string{
	"truyen-moi":     "Truyện mới",
	"truyen-hot":     "Đang hot",
	"truyen-full":    "Đánh giá cao",
	"hoan-thanh":     "Đã hoàn thành",
	"dang-phat-hanh": "Đang phát hành",
}

type readerView struct {
	PageTitle    string
	SeriesID     string
	SeriesTitle  string
	ChapterID    string
	ChapterTitle string
	Images       []string
	Prev         *model.Chapter
	Next         *model.Chapter
	Degraded     bool
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	res := h.Catalog.FetchHome(r.Context())
	h.render(w, http.StatusOK, "pages/home.html", homeView{
		PageTitle: "Trang chủ",
		Home:      res.Value,
		Recent:    h.History.RecentReads(homeRecentLimit),
		Degraded:  res.Degraded,
	})
}

func (h *PageHandler) Series(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	res := h.Catalog.FetchSeriesDetail(r.Context(), id)

	view := seriesView{PageTitle: id, SeriesID: id, Series: res.Value, Degraded: res.Degraded}
	status := http.StatusOK
	if res.Value == nil {
		status = http.StatusNotFound
	} else {
		view.PageTitle = res.Value.Title
	}
	h.render(w, status, "pages/series.html", view)
}

func (h *PageHandler) HistoryPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "pages/history.html", historyView{
		PageTitle: "Lịch sử đọc",
		Items:     h.History.Load(),
	})
}

func (h *PageHandler) RemoveHistory(w http.ResponseWriter, r *http.Request) {
	h.History.Remove(r.PathValue("seriesId"))
	http.Redirect(w, r, "/history", http.StatusSeeOther)
}

func (h *PageHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.History.Clear()
	http.Redirect(w, r, "/history", http.StatusSeeOther)
}

// Reader shows one chapter and records the open. The open is recorded once
// per request, and only when the series detail is known.
func (h *PageHandler) Reader(w http.ResponseWriter, r *http.Request) {
	seriesID := r.PathValue("seriesId")
	chapterID := r.PathValue("chapterId")

	images := h.Catalog.FetchChapterImages(r.Context(), seriesID, chapterID)
	detail := h.Catalog.FetchSeriesDetail(r.Context(), seriesID)

	view := readerView{
		SeriesID:     seriesID,
		ChapterID:    chapterID,
		ChapterTitle: "Chapter " + chapterID,
		Images:       images.Value,
		Degraded:     images.Degraded,
	}

	if s := detail.Value; s != nil {
		view.SeriesTitle = s.Title
		// chapters are latest first
		for i, ch := range s.Chapters {
			if ch.ID != chapterID {
				continue
			}
			view.ChapterTitle = ch.Title
			if i+1 < len(s.Chapters) {
				view.Prev = &s.Chapters[i+1]
			}
			if i > 0 {
				view.Next = &s.Chapters[i-1]
			}
			break
		}

		h.History.RecordOpen(history.OpenEvent{
			SeriesID:     seriesID,
			SeriesTitle:  s.Title,
			ChapterID:    chapterID,
			ChapterTitle: view.ChapterTitle,
			CoverURL:     s.CoverURL,
		})
	}

	view.PageTitle = view.ChapterTitle
	if view.SeriesTitle != "" {
		view.PageTitle = view.SeriesTitle + " - " + view.ChapterTitle
	}
	h.render(w, http.StatusOK, "pages/reader.html", view)
}

// List shows one page of a browse list. sort=rating orders the page by rating,
// which is how the top-rated list is built.
func (h *PageHandler) List(w http.ResponseWriter, r *http.Request) {
	listType := r.PathValue("type")
	sortBy := r.URL.Query().Get("sort")
	res := h.Catalog.FetchList(r.Context(), listType, pageParam(r))
	if sortBy == "rating" {
		res.Value.Items = catalog.SortByRating(res.Value.Items)
	}

	title, ok := listTitles[listType]
	if !ok {
		title = listType
	}
	extra := url.Values{}
	if sortBy != "" {
		extra.Set("sort", sortBy)
	}
	h.renderListing(w, res, title, "", "/list/"+url.PathEscape(listType), extra)
}

func (h *PageHandler) Category(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	res := h.Catalog.FetchByCategory(r.Context(), slug, pageParam(r))

	title := res.Value.CategoryName
	if title == "" {
		title = slug
	}
	h.renderListing(w, res, title, "", "/category/"+url.PathEscape(slug), nil)
}

func (h *PageHandler) Categories(w http.ResponseWriter, r *http.Request) {
	res := h.Catalog.FetchCategories(r.Context())
	h.render(w, http.StatusOK, "pages/categories.html", categoriesView{
		PageTitle:  "Thể loại",
		Categories: res.Value,
		Degraded:   res.Degraded,
	})
}

// Search shows results for ?q=. An empty query renders the form without
// calling the catalog.
func (h *PageHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		h.renderListing(w, catalog.Result[model.SeriesPage]{Value: model.EmptyPage()}, "Tìm kiếm", "", "/search", nil)
		return
	}

	res := h.Catalog.Search(r.Context(), query, pageParam(r))
	h.renderListing(w, res, "Kết quả cho \""+query+"\"", query, "/search", url.Values{"q": []string{query}})
}

func (h *PageHandler) renderListing(w http.ResponseWriter, res catalog.Result[model.SeriesPage], heading, query, base string, extra url.Values) {
	page := res.Value
	view := listingView{
		PageTitle: heading,
		Heading:   heading,
		Query:     query,
		Page:      page,
		Degraded:  res.Degraded,
	}
	if page.CurrentPage > 1 {
		view.PrevURL = pageURL(base, extra, page.CurrentPage-1)
	}
	if page.CurrentPage < page.TotalPages {
		view.NextURL = pageURL(base, extra, page.CurrentPage+1)
	}
	h.render(w, http.StatusOK, "pages/listing.html", view)
}

// pageURL links to another page of a listing, keeping its other query parameters.
func pageURL(base string, extra url.Values, page int) string {
	q := url.Values{}
	for k, v := range extra {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))
	return base + "?" + q.Encode()
}

func (h *PageHandler) render(w http.ResponseWriter, status int, name string, data any) {
	html, err := h.Templates.Render(name, data)
	if err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(html))
}
