package catalog

import (
	"hash/fnv"
	"html"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/theLastOfCats/mangadock/internal/model"
)

const (
	unknownAuthor = "Unknown Author"
	popularCount  = 12
	recentCount   = 12
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripTags removes markup from an upstream description.
func stripTags(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(html.UnescapeString(s))
}

func joinURL(base, path string) string {
	if path == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// ratingFor derives a stable rating in [8.0, 10.0) from the series id.
// The upstream API publishes no rating.
func ratingFor(id string) float64 {
	h := fnv.New32a()
	h.Write([]byte(id))
	return 8.0 + float64(h.Sum32()%20)/10
}

func toSeries(mediaBase string, m apiSeries) model.Series {
	genres := make([]string, 0, len(m.Category))
	for _, c := range m.Category {
		if c.Name != "" {
			genres = append(genres, c.Name)
		}
	}

	authors := make([]string, 0, len(m.Author))
	for _, a := range m.Author {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	author := strings.Join(authors, ", ")
	if author == "" {
		author = unknownAuthor
	}

	var latest *string
	if len(m.ChaptersLatest) > 0 {
		name := m.ChaptersLatest[0].ChapterName
		latest = &name
	}

	return model.Series{
		ID:            m.Slug,
		Title:         m.Name,
		Description:   stripTags(m.Content),
		CoverURL:      joinURL(mediaBase, m.ThumbURL),
		Status:        MapStatus(m.Status),
		Genres:        genres,
		Author:        author,
		LastUpdated:   m.UpdatedAt,
		Views:         m.View,
		Rating:        ratingFor(m.Slug),
		LatestChapter: latest,
	}
}

func toSeriesList(mediaBase string, items []apiSeries) []model.Series {
	out := make([]model.Series, 0, len(items))
	for _, it := range items {
		out = append(out, toSeries(mediaBase, it))
	}
	return out
}

// toDetail is toSeries plus the chapter list of the first server, latest first.
func toDetail(mediaBase string, m apiSeries) model.Series {
	s := toSeries(mediaBase, m)
	s.Chapters = []model.Chapter{}
	if len(m.Chapters) == 0 {
		return s
	}
	for _, ref := range m.Chapters[0].ServerData {
		title := ref.ChapterTitle
		if title == "" {
			title = "Chapter " + ref.ChapterName
		}
		number, err := strconv.ParseFloat(strings.TrimSpace(ref.ChapterName), 64)
		if err != nil {
			number = 0
		}
		id := ref.Filename
		if id == "" {
			id = ref.ChapterName
		}
		s.Chapters = append(s.Chapters, model.Chapter{
			ID:          id,
			Title:       title,
			Number:      number,
			PublishedAt: ref.UpdatedAt,
		})
	}
	slices.Reverse(s.Chapters)
	return s
}

func chapterImageURLs(mediaBase string, ch apiChapter) []string {
	images := slices.Clone(ch.Images)
	sort.SliceStable(images, func(i, j int) bool { return images[i].Page < images[j].Page })

	base := joinURL(mediaBase, ch.ChapterPath)
	if base == "" {
		base = mediaBase
	}
	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, joinURL(base, img.File))
	}
	return urls
}

// toPage builds a SeriesPage. Missing pagination fields fall back to the item
// count and page 1, and total pages is derived from the page size when the
// API omits it.
func toPage(mediaBase string, data listData) model.SeriesPage {
	page := model.SeriesPage{
		Items:        toSeriesList(mediaBase, data.Items),
		CurrentPage:  1,
		TotalPages:   1,
		CategoryName: data.TitlePage,
	}
	page.Total = len(page.Items)

	p := data.Params.Pagination
	if p == nil {
		return page
	}
	if p.TotalItems != nil {
		page.Total = *p.TotalItems
	}
	if p.CurrentPage != nil && *p.CurrentPage > 0 {
		page.CurrentPage = *p.CurrentPage
	}
	switch {
	case p.TotalPages != nil && *p.TotalPages > 0:
		page.TotalPages = *p.TotalPages
	case p.TotalItemsPerPage != nil && *p.TotalItemsPerPage > 0:
		per := *p.TotalItemsPerPage
		page.TotalPages = max(1, (page.Total+per-1)/per)
	}
	return page
}

// homeFrom splits one batch of series into the home sections.
func homeFrom(items []model.Series) model.HomeData {
	completed := make([]model.Series, 0)
	for _, s := range items {
		if s.Status == model.StatusCompleted {
			completed = append(completed, s)
		}
	}
	return model.HomeData{
		Featured:  items,
		Popular:   window(items, 0, popularCount),
		Recent:    window(items, popularCount, popularCount+recentCount),
		Completed: completed,
	}
}

func window(items []model.Series, from, to int) []model.Series {
	from = min(from, len(items))
	to = min(to, len(items))
	return slices.Clone(items[from:to])
}

// SortByRating returns a copy of items ordered by rating, highest first.
// Equal ratings keep their upstream order.
func SortByRating(items []model.Series) []model.Series {
	out := slices.Clone(items)
	if out == nil {
		out = []model.Series{}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	return out
}
