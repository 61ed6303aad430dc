package api

import (
	"fmt"
	"io/fs"
	"net/http"

	"github.com/theLastOfCats/mangadock/internal/catalog"
	"github.com/theLastOfCats/mangadock/internal/events"
	"github.com/theLastOfCats/mangadock/internal/history"
	"github.com/theLastOfCats/mangadock/internal/templates"
)

type RouterConfig struct {
	Catalog catalog.Client
	History *history.Store
	Hub     *events.Hub
	// Site holds layout.html, pages/ and static/.
	Site fs.FS
}

// NewRouter builds the full HTTP surface wrapped in the request-id and
// logging middleware.
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	static, err := fs.Sub(cfg.Site, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	catalogHandler := &CatalogHandler{Catalog: cfg.Catalog}
	historyHandler := &HistoryHandler{History: cfg.History}
	pageHandler := &PageHandler{
		Catalog:   cfg.Catalog,
		History:   cfg.History,
		Templates: templates.NewManager(cfg.Site),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", Health)
	mux.Handle("GET /{$}", http.RedirectHandler("/home", http.StatusFound))

	// Catalog
	mux.HandleFunc("GET /api/home", catalogHandler.GetHome)
	mux.HandleFunc("GET /api/list/{type}", catalogHandler.GetList)
	mux.HandleFunc("GET /api/categories", catalogHandler.GetCategories)
	mux.HandleFunc("GET /api/category/{slug}", catalogHandler.GetCategory)
	mux.HandleFunc("GET /api/series/{id}", catalogHandler.GetSeries)
	mux.HandleFunc("GET /api/series/{id}/{chapterId}", catalogHandler.GetChapter)
	mux.HandleFunc("GET /api/search", catalogHandler.Search)

	// History
	mux.HandleFunc("GET /api/history", historyHandler.GetHistory)
	mux.HandleFunc("GET /api/history/recent", historyHandler.GetRecent)
	mux.HandleFunc("POST /api/history", historyHandler.PostHistory)
	mux.HandleFunc("DELETE /api/history/{seriesId}", historyHandler.DeleteSeries)
	mux.HandleFunc("DELETE /api/history", historyHandler.DeleteAll)
	if cfg.Hub != nil {
		mux.HandleFunc("GET /ws/history", cfg.Hub.ServeWS)
	}

	// Pages
	mux.HandleFunc("GET /home", pageHandler.Home)
	mux.HandleFunc("GET /series/{id}", pageHandler.Series)
	mux.HandleFunc("GET /list/{type}", pageHandler.List)
	mux.HandleFunc("GET /categories", pageHandler.Categories)
	mux.HandleFunc("GET /category/{slug}", pageHandler.Category)
	mux.HandleFunc("GET /search", pageHandler.Search)
	mux.HandleFunc("GET /history", pageHandler.HistoryPage)
	mux.HandleFunc("POST /history/{seriesId}/remove", pageHandler.RemoveHistory)
	mux.HandleFunc("POST /history/clear", pageHandler.ClearHistory)
	mux.HandleFunc("GET /read/{seriesId}/{chapterId}", pageHandler.Reader)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	return RequestIDMiddleware(LoggingMiddleware(mux)), nil
}
