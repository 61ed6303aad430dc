package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"
	"time"
)

// LayoutFile holds the shared partials every page is parsed with.
const LayoutFile = "layout.html"

type Manager struct {
	fsys  fs.FS
	funcs template.FuncMap
	mu    sync.Mutex
	cache map[string]*template.Template
}

func NewManager(fsys fs.FS) *Manager {
	return &Manager{
		fsys:  fsys,
		funcs: Funcs(time.Now),
		cache: make(map[string]*template.Template),
	}
}

// Funcs returns the helpers available to every template.
func Funcs(now func() time.Time) template.FuncMap {
	return template.FuncMap{
		"formatViews": FormatViews,
		"timeAgo":     func(t time.Time) string { return TimeAgo(t, now()) },
		"add":         func(a, b int) int { return a + b },
	}
}

func (m *Manager) Render(templateName string, data any) (string, error) {
	tmpl, err := m.lookup(templateName)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	return buf.String(), nil
}

func (m *Manager) lookup(templateName string) (*template.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tmpl, ok := m.cache[templateName]; ok {
		return tmpl, nil
	}

	// Lazily load template
	tmpl, err := template.New(path.Base(templateName)).
		Funcs(m.funcs).
		ParseFS(m.fsys, templateName, LayoutFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", templateName, err)
	}
	m.cache[templateName] = tmpl
	return tmpl, nil
}
