package catalog

import "encoding/json"

// Upstream response shapes. Only the fields the adapter reads are declared.

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type listData struct {
	Items  []apiSeries `json:"items"`
	Params struct {
		Pagination *apiPagination `json:"pagination"`
	} `json:"params"`
	TitlePage string `json:"titlePage"`
}

type categoryData struct {
	Items []apiCategory `json:"items"`
}

type itemData[T any] struct {
	Item T `json:"item"`
}

type apiPagination struct {
	TotalItems        *int `json:"totalItems"`
	TotalItemsPerPage *int `json:"totalItemsPerPage"`
	CurrentPage       *int `json:"currentPage"`
	TotalPages        *int `json:"totalPages"`
}

type apiCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type apiSeries struct {
	ID             string          `json:"_id"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	OriginName     []string        `json:"origin_name"`
	Content        string          `json:"content"`
	ThumbURL       string          `json:"thumb_url"`
	Author         []string        `json:"author"`
	Category       []apiCategory   `json:"category"`
	Status         string          `json:"status"`
	ChaptersLatest []apiChapterRef `json:"chaptersLatest"`
	Chapters       []apiServer     `json:"chapters"`
	UpdatedAt      string          `json:"updatedAt"`
	View           int64           `json:"view"`
}

type apiServer struct {
	ServerName string          `json:"server_name"`
	ServerData []apiChapterRef `json:"server_data"`
}

type apiChapterRef struct {
	Filename       string `json:"filename"`
	ChapterName    string `json:"chapter_name"`
	ChapterTitle   string `json:"chapter_title"`
	ChapterAPIData string `json:"chapter_api_data"`
	UpdatedAt      string `json:"updatedAt"`
}

type apiChapter struct {
	ID          string     `json:"_id"`
	ComicName   string     `json:"comic_name"`
	ChapterName string     `json:"chapter_name"`
	ChapterPath string     `json:"chapter_path"`
	Images      []apiImage `json:"chapter_image"`
}

type apiImage struct {
	Page int    `json:"image_page"`
	File string `json:"image_file"`
}
