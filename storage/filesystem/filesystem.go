// Package filesystem persists transaction records as a single JSON file,
// rewritten atomically on every mutation. It trades throughput for a storage
// format that is trivial to inspect and back up, which is the right trade for
// a wallet's transaction log.
package filesystem

import (
	"encoding/json"
	"errors"
	"os"
	"sort"
	"sync"

	"github.com/mimblenet/slatewire/storage"
)

type data struct {
	Records map[string]storage.Record
}

func newData() *data {
	return &data{
		Records: make(map[string]storage.Record),
	}
}

type FilesystemStorage struct {
	mu   sync.RWMutex
	path string
}

func NewFilesystemStorage(path string) *FilesystemStorage {
	return &FilesystemStorage{
		path: path,
	}
}

func (fs *FilesystemStorage) load() (*data, error) {
	f, err := os.Open(fs.path)
	if os.IsNotExist(err) {
		return newData(), nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	var d data
	if err := json.NewDecoder(f).Decode(&d); err != nil {
		return nil, err
	}
	if d.Records == nil {
		d.Records = make(map[string]storage.Record)
	}
	return &d, nil
}

func (fs *FilesystemStorage) save(d *data) error {
	tmp := fs.path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(d); err != nil {
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, fs.path)
}

func (fs *FilesystemStorage) Get(id string) (*storage.Record, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	d, err := fs.load()
	if err != nil {
		return nil, err
	}

	r, ok := d.Records[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &r, nil
}

func (fs *FilesystemStorage) List() ([]storage.Record, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	d, err := fs.load()
	if err != nil {
		return nil, err
	}

	var sl []storage.Record
	for _, r := range d.Records {
		sl = append(sl, r)
	}
	sort.Slice(sl, func(i, j int) bool {
		return sl[i].CreatedAt.Before(sl[j].CreatedAt)
	})

	return sl, nil
}

func (fs *FilesystemStorage) Create(rec storage.Record) error {
	if rec.ID == "" {
		return errors.New("invalid id")
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	d, err := fs.load()
	if err != nil {
		return err
	}

	if _, ok := d.Records[rec.ID]; ok {
		return storage.ErrExists
	}

	d.Records[rec.ID] = rec

	return fs.save(d)
}

func (fs *FilesystemStorage) Update(rec storage.Record) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	d, err := fs.load()
	if err != nil {
		return err
	}

	if _, ok := d.Records[rec.ID]; !ok {
		return storage.ErrNotFound
	}

	d.Records[rec.ID] = rec

	return fs.save(d)
}

// Make sure FilesystemStorage implements Storage.
var _ storage.Storage = &FilesystemStorage{}
