package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/cognimock/cognimock/internal/metrics"
)

// Suffix is the file extension of every dataset in the data directory.
const Suffix = ".json"

// Factory opens, creates, and removes named datasets.
type Factory interface {
	// Create opens the dataset called name, seeding the backing file with
	// defaults when it does not exist yet. Idempotent per name.
	Create(ctx context.Context, name string, defaults any) (Dataset, error)
	// Remove destroys the dataset called name; absent datasets are a no-op.
	Remove(ctx context.Context, name string) error
}

// FileFactory creates file-backed datasets under a single data directory.
// It caches no document state, only the per-name lock that serializes
// writers across every handle of the same dataset.
type FileFactory struct {
	dir string
	log *zap.Logger
	rec metrics.Recorder

	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

var _ Factory = (*FileFactory)(nil)

// NewFileFactory constructs a factory rooted at dir. A nil rec disables
// metrics.
func NewFileFactory(dir string, log *zap.Logger, rec metrics.Recorder) *FileFactory {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &FileFactory{
		dir:   dir,
		log:   log,
		rec:   rec,
		locks: make(map[string]*sync.RWMutex),
	}
}

// Dir returns the data directory the factory is rooted at.
func (f *FileFactory) Dir() string { return f.dir }

// Create opens <dir>/<name>.json, writing defaults first if the file is
// absent.
func (f *FileFactory) Create(ctx context.Context, name string, defaults any) (Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("store: empty dataset name")
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: mkdir %s: %w", f.dir, err)
	}

	lock := f.lockFor(name)
	file := filepath.Join(f.dir, name+Suffix)

	lock.Lock()
	defer lock.Unlock()

	if _, err := os.Stat(file); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("store: stat %s: %w", file, err)
		}
		data, err := json.MarshalIndent(defaults, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("store: marshal defaults for %s: %w", name, err)
		}
		if err := atomicWrite(file, data); err != nil {
			return nil, fmt.Errorf("store: seed %s: %w", file, err)
		}
		f.log.Info("dataset created", zap.String("dataset", name), zap.String("file", file))
	}

	return &fileDataset{
		name: name,
		file: file,
		mu:   lock,
		log:  f.log,
		rec:  f.rec,
	}, nil
}

// Remove deletes the dataset's backing file. Absent files are not an error.
func (f *FileFactory) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock := f.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	file := filepath.Join(f.dir, name+Suffix)
	if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: remove %s: %w", file, err)
	}
	return nil
}

// lockFor returns the shared lock for a dataset name, creating it once.
func (f *FileFactory) lockFor(name string) *sync.RWMutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.locks[name]
	if !ok {
		l = &sync.RWMutex{}
		f.locks[name] = l
	}
	return l
}
