package memory

import (
	"sort"
	"sync"

	"github.com/mimblenet/slatewire/storage"
)

type MemoryStorage struct {
	mu      sync.Mutex
	records map[string]*storage.Record
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*storage.Record),
	}
}

func (ms *MemoryStorage) Get(id string) (*storage.Record, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	r, ok := ms.records[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (ms *MemoryStorage) List() ([]storage.Record, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var sl []storage.Record
	for _, r := range ms.records {
		sl = append(sl, *r)
	}
	sort.Slice(sl, func(i, j int) bool {
		return sl[i].CreatedAt.Before(sl[j].CreatedAt)
	})

	return sl, nil
}

func (ms *MemoryStorage) Create(rec storage.Record) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.records[rec.ID]; ok {
		return storage.ErrExists
	}
	ms.records[rec.ID] = &rec

	return nil
}

func (ms *MemoryStorage) Update(rec storage.Record) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.records[rec.ID]; !ok {
		return storage.ErrNotFound
	}
	ms.records[rec.ID] = &rec

	return nil
}

// Make sure MemoryStorage implements Storage.
var _ storage.Storage = &MemoryStorage{}
