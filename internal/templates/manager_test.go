package templates

import (
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func TestFormatViews(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0K"},
		{3456, "3.5K"},
		{1_234_567, "1.2M"},
	}
	for _, tt := range tests {
		if got := FormatViews(tt.in); got != tt.want {
			t.Errorf("FormatViews(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Minute, "Vừa xong"},
		{3 * time.Hour, "3 giờ trước"},
		{30 * time.Hour, "Hôm qua"},
		{72 * time.Hour, "07/03/2024"},
	}
	for _, tt := range tests {
		if got := TimeAgo(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("TimeAgo(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestRenderWithLayout(t *testing.T) {
	fsys := fstest.MapFS{
		LayoutFile:        {Data: []byte(`{{define "header"}}<h1>{{.Title}}</h1>{{end}}`)},
		"pages/test.html": {Data: []byte(`{{template "header" .}}<p>{{formatViews .Views}}</p>`)},
	}
	m := NewManager(fsys)

	out, err := m.Render("pages/test.html", map[string]any{"Title": "Hi", "Views": int64(2500)})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "<h1>Hi</h1><p>2.5K</p>" {
		t.Errorf("unexpected output: %q", out)
	}

	// second render uses the cached template
	if _, err := m.Render("pages/test.html", map[string]any{"Title": "Again", "Views": int64(1)}); err != nil {
		t.Fatalf("cached Render: %v", err)
	}
}

func TestRenderMissingTemplate(t *testing.T) {
	m := NewManager(fstest.MapFS{LayoutFile: {Data: []byte(``)}})
	_, err := m.Render("pages/missing.html", nil)
	if err == nil || !strings.Contains(err.Error(), "pages/missing.html") {
		t.Errorf("expected parse error naming the template, got %v", err)
	}
}
