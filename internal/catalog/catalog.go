// Package catalog adapts the public manga catalog API to the local view model.
//
// Every operation makes a single request and never returns an error. Failures
// come back as a degraded Result carrying an empty value (or, for the home
// page, the synthetic dataset) together with the cause.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/theLastOfCats/mangadock/internal/model"
)

var tracer = otel.Tracer("github.com/theLastOfCats/mangadock/internal/catalog")

// Result is the outcome of one catalog call. Degraded is set when Value is a
// stand-in produced after a failure; Err then holds the cause.
type Result[T any] struct {
	Value    T
	Degraded bool
	Err      error
}

func ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func degraded[T any](v T, err error) Result[T] {
	return Result[T]{Value: v, Degraded: true, Err: err}
}

// Endpoints are the path prefixes of the upstream API, relative to the base URL.
type Endpoints struct {
	Home       string
	List       string
	Category   string
	Categories string
	Series     string
	Search     string
}

func GenericEndpoints() Endpoints {
	return Endpoints{
		Home:       "/home",
		List:       "/list",
		Category:   "/category",
		Categories: "/categories",
		Series:     "/series",
		Search:     "/search",
	}
}

func OTruyenEndpoints() Endpoints {
	return Endpoints{
		Home:       "/home",
		List:       "/danh-sach",
		Category:   "/the-loai",
		Categories: "/the-loai",
		Series:     "/truyen-tranh",
		Search:     "/tim-kiem",
	}
}

// EndpointsFor returns the preset named by dialect ("otruyen" or "generic").
func EndpointsFor(dialect string) (Endpoints, error) {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "", "otruyen":
		return OTruyenEndpoints(), nil
	case "generic":
		return GenericEndpoints(), nil
	default:
		return Endpoints{}, fmt.Errorf("unknown catalog dialect %q", dialect)
	}
}

// Client holds everything a catalog call depends on. It is never mutated
// after construction and is safe to copy.
type Client struct {
	BaseURL   string
	MediaURL  string
	HTTP      *http.Client
	Endpoints Endpoints
	Logger    *log.Logger
}

func New(baseURL, mediaURL string, httpClient *http.Client, endpoints Endpoints) Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		MediaURL:  strings.TrimRight(mediaURL, "/"),
		HTTP:      httpClient,
		Endpoints: endpoints,
		Logger:    log.Default(),
	}
}

func (c Client) FetchHome(ctx context.Context) Result[model.HomeData] {
	var data listData
	if err := c.get(ctx, "home", c.Endpoints.Home, nil, &data); err != nil {
		c.logf("[catalog] home degraded to synthetic data: %v", err)
		return degraded(SyntheticHome(c.MediaURL), err)
	}
	return ok(homeFrom(toSeriesList(c.MediaURL, data.Items)))
}

func (c Client) FetchList(ctx context.Context, listType string, page int) Result[model.SeriesPage] {
	path := c.Endpoints.List + "/" + url.PathEscape(listType)
	return c.fetchPage(ctx, "list", path, pageQuery(page))
}

func (c Client) FetchCategories(ctx context.Context) Result[[]model.Category] {
	var data categoryData
	if err := c.get(ctx, "categories", c.Endpoints.Categories, nil, &data); err != nil {
		c.logf("[catalog] categories degraded: %v", err)
		return degraded([]model.Category{}, err)
	}
	out := make([]model.Category, 0, len(data.Items))
	for _, cat := range data.Items {
		out = append(out, model.Category{
			ID:          cat.ID,
			Name:        cat.Name,
			Slug:        cat.Slug,
			Description: cat.Description,
		})
	}
	return ok(out)
}

func (c Client) FetchByCategory(ctx context.Context, slug string, page int) Result[model.SeriesPage] {
	path := c.Endpoints.Category + "/" + url.PathEscape(slug)
	return c.fetchPage(ctx, "category", path, pageQuery(page))
}

func (c Client) Search(ctx context.Context, query string, page int) Result[model.SeriesPage] {
	q := pageQuery(page)
	q.Set("keyword", query)
	return c.fetchPage(ctx, "search", c.Endpoints.Search, q)
}

// FetchSeriesDetail returns the series with its chapter list, latest first,
// or a degraded nil.
func (c Client) FetchSeriesDetail(ctx context.Context, seriesID string) Result[*model.Series] {
	var data itemData[apiSeries]
	path := c.Endpoints.Series + "/" + url.PathEscape(seriesID)
	if err := c.get(ctx, "series", path, nil, &data); err != nil {
		c.logf("[catalog] series %s degraded: %v", seriesID, err)
		return degraded[*model.Series](nil, err)
	}
	if data.Item.Slug == "" {
		err := fmt.Errorf("series %s: response has no item", seriesID)
		c.logf("[catalog] series %s degraded: %v", seriesID, err)
		return degraded[*model.Series](nil, err)
	}
	s := toDetail(c.MediaURL, data.Item)
	return ok(&s)
}

// FetchChapterImages returns the page image URLs of a chapter in page order.
func (c Client) FetchChapterImages(ctx context.Context, seriesID, chapterID string) Result[[]string] {
	var data itemData[apiChapter]
	path := c.Endpoints.Series + "/" + url.PathEscape(seriesID) + "/" + url.PathEscape(chapterID)
	if err := c.get(ctx, "chapter", path, nil, &data); err != nil {
		c.logf("[catalog] chapter %s/%s degraded: %v", seriesID, chapterID, err)
		return degraded([]string{}, err)
	}
	if len(data.Item.Images) == 0 {
		err := fmt.Errorf("chapter %s/%s: response has no images", seriesID, chapterID)
		c.logf("[catalog] chapter %s/%s degraded: %v", seriesID, chapterID, err)
		return degraded([]string{}, err)
	}
	return ok(chapterImageURLs(c.MediaURL, data.Item))
}

func (c Client) fetchPage(ctx context.Context, op, path string, query url.Values) Result[model.SeriesPage] {
	var data listData
	if err := c.get(ctx, op, path, query, &data); err != nil {
		c.logf("[catalog] %s %s degraded: %v", op, path, err)
		return degraded(model.EmptyPage(), err)
	}
	return ok(toPage(c.MediaURL, data))
}

// get performs one GET against the API and decodes the envelope's data into out.
func (c Client) get(ctx context.Context, op, path string, query url.Values, out any) (err error) {
	ctx, span := tracer.Start(ctx, "catalog."+op)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	span.SetAttributes(attribute.String("url.full", u))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request: %w", op, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	if env.Status != "success" {
		return fmt.Errorf("%s: api status %q: %s", op, env.Status, env.Message)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%s: response has no data", op)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", op, err)
	}
	return nil
}

func (c Client) logf(format string, args ...any) {
	if c.Logger == nil {
		log.Printf(format, args...)
		return
	}
	c.Logger.Printf(format, args...)
}

func pageQuery(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": []string{strconv.Itoa(page)}}
}
