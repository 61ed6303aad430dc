package catalog

import (
	"fmt"
	"strconv"

	"github.com/theLastOfCats/mangadock/internal/model"
)

const syntheticCount = 24

var syntheticGenres = [][]string{
	{"Action", "Fantasy"},
	{"Romance", "Comedy"},
	{"Adventure"},
	{"Drama", "Slice of Life"},
	{"Mystery", "Supernatural"},
}

var syntheticStatuses = []model.Status{
	model.StatusOngoing,
	model.StatusCompleted,
	model.StatusOngoing,
	model.StatusHiatus,
}

// SyntheticHome is the home page shown when the catalog is unreachable.
// It is identical on every call.
func SyntheticHome(mediaBase string) model.HomeData {
	items := make([]model.Series, 0, syntheticCount)
	for i := range syntheticCount {
		id := fmt.Sprintf("sample-series-%02d", i+1)
		latest := strconv.Itoa(10 + i*3)
		items = append(items, model.Series{
			ID:            id,
			Title:         fmt.Sprintf("Sample Series %d", i+1),
			Description:   "The catalog is currently unavailable. This entry is a placeholder.",
			CoverURL:      joinURL(mediaBase, id+".jpg"),
			Status:        syntheticStatuses[i%len(syntheticStatuses)],
			Genres:        append([]string(nil), syntheticGenres[i%len(syntheticGenres)]...),
			Author:        unknownAuthor,
			LastUpdated:   "2024-01-01T00:00:00.000Z",
			Views:         int64(1000 * (syntheticCount - i) * (syntheticCount - i)),
			Rating:        ratingFor(id),
			LatestChapter: &latest,
		})
	}

	home := homeFrom(items)
	home.Featured = window(items, 0, 4)
	return home
}
