package model

import "time"

// HistoryItem is one reading-history record. There is at most one per SeriesID.
type HistoryItem struct {
	SeriesID     string    `json:"seriesId"`
	SeriesTitle  string    `json:"seriesTitle"`
	ChapterID    string    `json:"chapterId"`
	ChapterTitle string    `json:"chapterTitle"`
	CoverURL     string    `json:"coverUrl"`
	LastReadAt   time.Time `json:"lastReadAt"`
	ReadCount    int       `json:"readCount"`
}

type Status string

const (
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusHiatus    Status = "hiatus"
	StatusCancelled Status = "cancelled"
)

type Series struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CoverURL      string    `json:"coverUrl"`
	Status        Status    `json:"status"`
	Genres        []string  `json:"genres"`
	Author        string    `json:"author"`
	LastUpdated   string    `json:"lastUpdated"`
	Views         int64     `json:"views"`
	Rating        float64   `json:"rating"`
	LatestChapter *string   `json:"latestChapter"`
	Chapters      []Chapter `json:"chapters,omitempty"`
}

type Chapter struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Number      float64 `json:"number"`
	PublishedAt string  `json:"publishedAt"`
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// SeriesPage is one page of a paginated listing.
type SeriesPage struct {
	Items        []Series `json:"items"`
	Total        int      `json:"total"`
	CurrentPage  int      `json:"currentPage"`
	TotalPages   int      `json:"totalPages"`
	CategoryName string   `json:"categoryName,omitempty"`
}

type HomeData struct {
	Featured  []Series `json:"featured"`
	Popular   []Series `json:"popular"`
	Recent    []Series `json:"recent"`
	Completed []Series `json:"completed"`
}

// EmptyPage is the page returned when a listing could not be fetched.
func EmptyPage() SeriesPage {
	return SeriesPage{Items: []Series{}, Total: 0, CurrentPage: 1, TotalPages: 1}
}
