package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/theLastOfCats/mangadock/internal/catalog"
	"github.com/theLastOfCats/mangadock/internal/history"
	"github.com/theLastOfCats/mangadock/internal/kv"
	"github.com/theLastOfCats/mangadock/internal/model"
)

const seriesFixture = `{"status":"success","data":{"item":{
	"slug":"abc",
	"name":"Series ABC",
	"thumb_url":"abc.jpg",
	"status":"ongoing",
	"chapters":[{"server_name":"Server #1","server_data":[
		{"filename":"ch-1","chapter_name":"1"},
		{"filename":"ch-2","chapter_name":"2","chapter_title":"The Storm"},
		{"filename":"ch-3","chapter_name":"3"}
	]}]
}}}`

const chapterFixture = `{"status":"success","data":{"item":{
	"chapter_path":"uploads/abc/ch-2",
	"chapter_image":[{"image_page":2,"image_file":"b.jpg"},{"image_page":1,"image_file":"a.jpg"}]
}}}`

const listFixture = `{"status":"success","data":{
	"items":[{"slug":"alpha"},{"slug":"beta"},{"slug":"gamma"},{"slug":"delta"}],
	"params":{"pagination":{"totalItems":4,"currentPage":1,"totalPages":1}}
}}`

const categoryFixture = `{"status":"success","data":{
	"items":[{"slug":"alpha","name":"Alpha"}],
	"titlePage":"Hành động",
	"params":{"pagination":{"totalItems":1,"currentPage":1,"totalPages":1}}
}}`

// upstream fakes the catalog API: one known series, one list, one category
// and search. Everything else fails.
func upstream() http.Handler {
	mux := http.NewServeMux()
	reply := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, body)
		}
	}
	mux.HandleFunc("GET /truyen-tranh/abc", reply(seriesFixture))
	mux.HandleFunc("GET /truyen-tranh/abc/{chapter}", reply(chapterFixture))
	mux.HandleFunc("GET /danh-sach/moi", reply(listFixture))
	mux.HandleFunc("GET /the-loai/action", reply(categoryFixture))
	mux.HandleFunc("GET /tim-kiem", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		body, _ := json.Marshal(map[string]any{
			"status": "success",
			"data": map[string]any{
				"items": []map[string]string{{"slug": "found", "name": "Found " + r.URL.Query().Get("keyword")}},
				"params": map[string]any{
					"pagination": map[string]int{"totalItems": 72, "currentPage": page, "totalPages": 3},
				},
			},
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	})
	return mux
}

func setupRouter(t *testing.T) (http.Handler, *history.Store) {
	t.Helper()

	srv := httptest.NewServer(upstream())
	t.Cleanup(srv.Close)

	client := catalog.New(srv.URL, "https://media.test", srv.Client(), catalog.OTruyenEndpoints())
	client.Logger = log.New(io.Discard, "", 0)

	hist := history.New(kv.NewMemoryStore())
	hist.Logger = log.New(io.Discard, "", 0)

	router, err := NewRouter(RouterConfig{
		Catalog: client,
		History: hist,
		Site:    os.DirFS("../../templates"),
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return router, hist
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	req, err := http.NewRequest("GET", "/", nil)
	if err != nil {
		t.Fatal(err)
	}
	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(Health)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	expected := "Alive"
	if rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: got %v want %v", rr.Body.String(), expected)
	}
}

func TestRootRedirectsHome(t *testing.T) {
	router, _ := setupRouter(t)

	rr := do(t, router, "GET", "/", nil)
	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusFound)
	}
	if loc := rr.Header().Get("Location"); loc != "/home" {
		t.Errorf("Location = %q, want /home", loc)
	}

	rr = do(t, router, "GET", "/healthz", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "Alive" {
		t.Errorf("healthz: %d %q", rr.Code, rr.Body.String())
	}
}

func TestRequestID(t *testing.T) {
	router, _ := setupRouter(t)

	rr := do(t, router, "GET", "/healthz", nil)
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Error("expected a generated request id")
	}

	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if got := rr.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestHistoryAPI(t *testing.T) {
	router, _ := setupRouter(t)

	body, _ := json.Marshal(history.OpenEvent{SeriesID: "m1", SeriesTitle: "One", ChapterID: "c1", ChapterTitle: "Chapter 1"})
	rr := do(t, router, "POST", "/api/history", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("PostHistory failed code: %v body: %s", rr.Code, rr.Body.String())
	}
	var items []model.HistoryItem
	json.NewDecoder(rr.Body).Decode(&items)
	if len(items) != 1 || items[0].SeriesID != "m1" || items[0].ReadCount != 1 {
		t.Fatalf("unexpected history after post: %+v", items)
	}

	body, _ = json.Marshal(history.OpenEvent{SeriesID: "m2", ChapterID: "c9"})
	do(t, router, "POST", "/api/history", body)

	rr = do(t, router, "GET", "/api/history/recent?limit=1", nil)
	items = nil
	json.NewDecoder(rr.Body).Decode(&items)
	if len(items) != 1 || items[0].SeriesID != "m2" {
		t.Errorf("recent = %+v, want only m2", items)
	}

	rr = do(t, router, "DELETE", "/api/history/m2", nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rr.Code)
	}

	rr = do(t, router, "GET", "/api/history", nil)
	items = nil
	json.NewDecoder(rr.Body).Decode(&items)
	if len(items) != 1 || items[0].SeriesID != "m1" {
		t.Errorf("history after delete = %+v", items)
	}

	rr = do(t, router, "DELETE", "/api/history", nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("clear status = %d", rr.Code)
	}
	rr = do(t, router, "GET", "/api/history", nil)
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("history after clear = %s, want []", rr.Body.String())
	}
}

func TestPostHistoryRejectsBadInput(t *testing.T) {
	router, hist := setupRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"seriesId":`},
		{"missing series", `{"chapterId":"c1"}`},
		{"blank series", `{"seriesId":"  "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, router, "POST", "/api/history", []byte(tt.body))
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil || resp.Error == "" {
				t.Errorf("expected JSON error body, got %q", rr.Body.String())
			}
		})
	}

	if got := hist.Load(); len(got) != 0 {
		t.Errorf("bad requests changed history: %+v", got)
	}
}

func TestRecentRejectsBadLimit(t *testing.T) {
	router, _ := setupRouter(t)
	if rr := do(t, router, "GET", "/api/history/recent?limit=ten", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestCatalogDegradedHeader(t *testing.T) {
	router, _ := setupRouter(t)

	rr := do(t, router, "GET", "/api/category/action?page=2", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get(DegradedHeader) != "true" {
		t.Error("expected degraded header")
	}
	var page model.SeriesPage
	json.NewDecoder(rr.Body).Decode(&page)
	if page.Total != 0 || page.CurrentPage != 1 || page.TotalPages != 1 || page.Items == nil {
		t.Errorf("unexpected fallback page: %+v", page)
	}

	rr = do(t, router, "GET", "/api/list/moi", nil)
	if rr.Header().Get(DegradedHeader) != "" {
		t.Error("healthy response carries degraded header")
	}
}

func TestListSortByRating(t *testing.T) {
	router, _ := setupRouter(t)

	rr := do(t, router, "GET", "/api/list/moi?sort=rating", nil)
	var page model.SeriesPage
	json.NewDecoder(rr.Body).Decode(&page)
	if len(page.Items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(page.Items))
	}
	for i := 1; i < len(page.Items); i++ {
		if page.Items[i].Rating > page.Items[i-1].Rating {
			t.Errorf("items not sorted by rating: %v then %v", page.Items[i-1].Rating, page.Items[i].Rating)
		}
	}
}

func TestSeriesAPI(t *testing.T) {
	router, _ := setupRouter(t)

	rr := do(t, router, "GET", "/api/series/abc", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var s model.Series
	json.NewDecoder(rr.Body).Decode(&s)
	if s.ID != "abc" || len(s.Chapters) != 3 || s.Chapters[0].ID != "ch-3" {
		t.Errorf("unexpected series: %+v", s)
	}

	rr = do(t, router, "GET", "/api/series/missing", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing series status = %d, want 404", rr.Code)
	}
	if rr.Header().Get(DegradedHeader) != "true" {
		t.Error("expected degraded header on missing series")
	}

	rr = do(t, router, "GET", "/api/series/abc/ch-2", nil)
	var images []string
	json.NewDecoder(rr.Body).Decode(&images)
	if len(images) != 2 || images[0] != "https://media.test/uploads/abc/ch-2/a.jpg" {
		t.Errorf("images = %v", images)
	}
}

func TestReaderRecordsOneOpenPerRequest(t *testing.T) {
	router, hist := setupRouter(t)

	rr := do(t, router, "GET", "/read/abc/ch-2", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body: %s", rr.Code, rr.Body.String())
	}
	page := rr.Body.String()
	for _, want := range []string{"The Storm", "/read/abc/ch-1", "/read/abc/ch-3", "uploads/abc/ch-2/a.jpg"} {
		if !strings.Contains(page, want) {
			t.Errorf("reader page missing %q", want)
		}
	}

	items := hist.Load()
	if len(items) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(items))
	}
	it := items[0]
	if it.SeriesID != "abc" || it.ChapterID != "ch-2" || it.ChapterTitle != "The Storm" || it.ReadCount != 1 {
		t.Errorf("unexpected record: %+v", it)
	}
	if it.CoverURL != "https://media.test/abc.jpg" || it.SeriesTitle != "Series ABC" {
		t.Errorf("unexpected series fields: %+v", it)
	}

	do(t, router, "GET", "/read/abc/ch-3", nil)
	items = hist.Load()
	if len(items) != 1 || items[0].ReadCount != 2 || items[0].ChapterTitle != "Chapter 3" {
		t.Errorf("after second open: %+v", items)
	}
}

func TestReaderWithoutDetailSkipsHistory(t *testing.T) {
	router, hist := setupRouter(t)

	rr := do(t, router, "GET", "/read/missing/7", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Chapter 7") {
		t.Error("expected fallback chapter title")
	}
	if got := hist.Load(); len(got) != 0 {
		t.Errorf("history recorded without detail: %+v", got)
	}
}

func TestHistoryPages(t *testing.T) {
	router, hist := setupRouter(t)
	hist.RecordOpen(history.OpenEvent{SeriesID: "abc", SeriesTitle: "Series ABC", ChapterID: "ch-1", ChapterTitle: "Chapter 1"})
	hist.RecordOpen(history.OpenEvent{SeriesID: "xyz", SeriesTitle: "Series XYZ", ChapterID: "ch-9", ChapterTitle: "Chapter 9"})

	rr := do(t, router, "GET", "/history", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Series XYZ") {
		t.Fatalf("history page: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, router, "POST", "/history/xyz/remove", nil)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/history" {
		t.Errorf("remove: %d -> %q", rr.Code, rr.Header().Get("Location"))
	}
	if items := hist.Load(); len(items) != 1 || items[0].SeriesID != "abc" {
		t.Errorf("after remove: %+v", items)
	}

	rr = do(t, router, "POST", "/history/clear", nil)
	if rr.Code != http.StatusSeeOther {
		t.Errorf("clear status = %d", rr.Code)
	}
	if items := hist.Load(); len(items) != 0 {
		t.Errorf("after clear: %+v", items)
	}
}

func TestHomePageFallsBack(t *testing.T) {
	router, hist := setupRouter(t)
	hist.RecordOpen(history.OpenEvent{SeriesID: "abc", SeriesTitle: "Series ABC", ChapterID: "ch-1", ChapterTitle: "Chapter 1"})

	rr := do(t, router, "GET", "/home", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	page := rr.Body.String()
	for _, want := range []string{"Sample Series 1", "Series ABC", "Thử lại"} {
		if !strings.Contains(page, want) {
			t.Errorf("home page missing %q", want)
		}
	}
}

func TestSeriesPageNotFound(t *testing.T) {
	router, _ := setupRouter(t)

	rr := do(t, router, "GET", "/series/missing", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}

	rr = do(t, router, "GET", "/series/abc", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "/read/abc/ch-3") {
		t.Errorf("series page: %d", rr.Code)
	}
}

func TestStaticPlaceholder(t *testing.T) {
	router, _ := setupRouter(t)
	rr := do(t, router, "GET", "/static/placeholder.svg", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "<svg") {
		t.Errorf("placeholder: %d", rr.Code)
	}
}

func TestLoggingKeepsLargeBodies(t *testing.T) {
	var got int
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		got = len(b)
	}))

	for _, size := range []int{10, maxLoggedBody, 3 * maxLoggedBody} {
		body := bytes.Repeat([]byte("x"), size)
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/history", bytes.NewReader(body)))
		if got != size {
			t.Errorf("handler saw %d bytes, want %d", got, size)
		}
	}
}

func TestListPages(t *testing.T) {
	router, _ := setupRouter(t)

	rr := do(t, router, "GET", "/list/moi?sort=rating", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	page := rr.Body.String()

	// cards appear in the same order as the rating-sorted API listing
	var sorted model.SeriesPage
	json.NewDecoder(do(t, router, "GET", "/api/list/moi?sort=rating", nil).Body).Decode(&sorted)
	if len(sorted.Items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(sorted.Items))
	}
	last := -1
	for _, s := range sorted.Items {
		i := strings.Index(page, "/series/"+s.ID+"\"")
		if i < 0 {
			t.Fatalf("list page missing %s", s.ID)
		}
		if i < last {
			t.Errorf("%s is out of rating order", s.ID)
		}
		last = i
	}
	if strings.Contains(page, "Thử lại") {
		t.Error("healthy list shows the retry notice")
	}

	rr = do(t, router, "GET", "/list/truyen-hot", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Thử lại") {
		t.Errorf("degraded list should render with a retry notice, got %d", rr.Code)
	}
}

func TestCategoryPages(t *testing.T) {
	router, _ := setupRouter(t)

	rr := do(t, router, "GET", "/category/action", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	page := rr.Body.String()
	if !strings.Contains(page, "Hành động") || !strings.Contains(page, "/series/alpha") {
		t.Error("category page missing heading or items")
	}

	rr = do(t, router, "GET", "/category/missing", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Thử lại") {
		t.Errorf("degraded category should render with a retry notice, got %d", rr.Code)
	}

	rr = do(t, router, "GET", "/categories", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Thử lại") {
		t.Errorf("categories page: %d", rr.Code)
	}
}

func TestSearchPage(t *testing.T) {
	router, _ := setupRouter(t)

	rr := do(t, router, "GET", "/search?q=one+piece&page=2", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	page := rr.Body.String()
	for _, want := range []string{
		"Found one piece",
		"Trang 2 / 3",
		`href="/search?page=1&amp;q=one`,
		`href="/search?page=3&amp;q=one`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("search page missing %q", want)
		}
	}

	rr = do(t, router, "GET", "/search?q=+", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("empty search status = %d", rr.Code)
	}
	if page := rr.Body.String(); strings.Contains(page, "Thử lại") || strings.Contains(page, "Found") {
		t.Error("empty search should not call the catalog")
	}
}
