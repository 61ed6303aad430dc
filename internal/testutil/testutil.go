package testutil

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/theLastOfCats/mangadock/internal/db"
	"github.com/theLastOfCats/mangadock/internal/kv"
)

// SetupTestDB creates an in-memory SQLite DB with schema, private to the test.
func SetupTestDB(t *testing.T) *db.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	database, err := db.New("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Failed to init in-memory db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})
	return database
}

// ErrBroken is returned by every operation of a FailingStore.
var ErrBroken = errors.New("storage unavailable")

// FailingStore simulates a disabled or full storage backend.
type FailingStore struct {
	FailGet    bool
	FailSet    bool
	FailDelete bool

	mu      sync.Mutex
	Inner   kv.Store
	SetKeys []string
}

func NewFailingStore() *FailingStore {
	return &FailingStore{Inner: kv.NewMemoryStore()}
}

func (s *FailingStore) Get(key string) ([]byte, error) {
	if s.FailGet {
		return nil, ErrBroken
	}
	return s.Inner.Get(key)
}

func (s *FailingStore) Set(key string, value []byte) error {
	s.mu.Lock()
	s.SetKeys = append(s.SetKeys, key)
	s.mu.Unlock()
	if s.FailSet {
		return ErrBroken
	}
	return s.Inner.Set(key, value)
}

func (s *FailingStore) Delete(key string) error {
	if s.FailDelete {
		return ErrBroken
	}
	return s.Inner.Delete(key)
}
