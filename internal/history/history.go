// Package history keeps the local reading-history log: at most one record per
// series, most recent first, capped at MaxItems, persisted as one JSON slot.
//
// Storage failures never reach callers. A broken or missing slot reads as an
// empty log and failed writes are dropped after being logged.
package history

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/theLastOfCats/mangadock/internal/kv"
	"github.com/theLastOfCats/mangadock/internal/model"
)

const (
	DefaultKey   = "manga_reading_history"
	MaxItems     = 50
	DefaultLimit = 10
)

// OpenEvent describes one chapter being opened in the reader.
type OpenEvent struct {
	SeriesID     string `json:"seriesId"`
	SeriesTitle  string `json:"seriesTitle"`
	ChapterID    string `json:"chapterId"`
	ChapterTitle string `json:"chapterTitle"`
	CoverURL     string `json:"coverUrl"`
}

// Listener is told about the new log after every persisted mutation. It runs
// after the store's lock is released, so a slow listener never blocks readers.
type Listener interface {
	HistoryChanged(items []model.HistoryItem)
}

type Store struct {
	KV       kv.Store
	Key      string
	Now      func() time.Time
	Logger   *log.Logger
	Listener Listener

	// serializes read-modify-write cycles within this process
	mu sync.Mutex
}

func New(store kv.Store) *Store {
	return &Store{
		KV:     store,
		Key:    DefaultKey,
		Now:    time.Now,
		Logger: log.Default(),
	}
}

// Load returns the persisted log, or an empty log if it cannot be read.
func (s *Store) Load() []model.HistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// RecordOpen moves ev's series to the front of the log, bumping its read count.
// Call it once per chapter open, not once per render.
func (s *Store) RecordOpen(ev OpenEvent) {
	s.mu.Lock()
	items := s.load()

	priorCount := 0
	kept := make([]model.HistoryItem, 0, len(items)+1)
	kept = append(kept, model.HistoryItem{})
	for _, it := range items {
		if it.SeriesID == ev.SeriesID {
			if it.ReadCount > priorCount {
				priorCount = it.ReadCount
			}
			continue
		}
		kept = append(kept, it)
	}

	kept[0] = model.HistoryItem{
		SeriesID:     ev.SeriesID,
		SeriesTitle:  ev.SeriesTitle,
		ChapterID:    ev.ChapterID,
		ChapterTitle: ev.ChapterTitle,
		CoverURL:     ev.CoverURL,
		LastReadAt:   s.now().UTC(),
		ReadCount:    priorCount + 1,
	}

	if len(kept) > MaxItems {
		kept = kept[:MaxItems]
	}

	saved := s.save(kept)
	s.mu.Unlock()

	if saved {
		s.notify(kept)
	}
}

// Remove drops the series from the log. Removing an absent series is a no-op.
func (s *Store) Remove(seriesID string) {
	s.mu.Lock()
	items := s.load()
	kept := make([]model.HistoryItem, 0, len(items))
	for _, it := range items {
		if it.SeriesID != seriesID {
			kept = append(kept, it)
		}
	}
	saved := len(kept) != len(items) && s.save(kept)
	s.mu.Unlock()

	if saved {
		s.notify(kept)
	}
}

// Clear deletes the persisted slot.
func (s *Store) Clear() {
	s.mu.Lock()
	err := s.KV.Delete(s.key())
	s.mu.Unlock()

	if err != nil {
		s.logf("history: clear failed: %v", err)
		return
	}
	s.notify([]model.HistoryItem{})
}

// RecentReads returns up to limit of the most recent records.
// A non-positive limit means DefaultLimit.
func (s *Store) RecentReads(limit int) []model.HistoryItem {
	if limit <= 0 {
		limit = DefaultLimit
	}
	items := s.Load()
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func (s *Store) load() []model.HistoryItem {
	raw, err := s.KV.Get(s.key())
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.logf("history: read failed: %v", err)
		}
		return []model.HistoryItem{}
	}

	var items []model.HistoryItem
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logf("history: discarding unreadable slot %q: %v", s.key(), err)
		return []model.HistoryItem{}
	}
	if items == nil {
		items = []model.HistoryItem{}
	}
	return items
}

// save persists items and reports whether the write succeeded.
func (s *Store) save(items []model.HistoryItem) bool {
	raw, err := json.Marshal(items)
	if err != nil {
		s.logf("history: encode failed: %v", err)
		return false
	}
	if err := s.KV.Set(s.key(), raw); err != nil {
		s.logf("history: write failed: %v", err)
		return false
	}
	return true
}

func (s *Store) notify(items []model.HistoryItem) {
	if s.Listener == nil {
		return
	}
	snapshot := make([]model.HistoryItem, len(items))
	copy(snapshot, items)
	s.Listener.HistoryChanged(snapshot)
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Store) key() string {
	if s.Key == "" {
		return DefaultKey
	}
	return s.Key
}

func (s *Store) logf(format string, args ...any) {
	if s.Logger == nil {
		log.Printf(format, args...)
		return
	}
	s.Logger.Printf(format, args...)
}
