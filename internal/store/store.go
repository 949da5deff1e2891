// Package store implements a path-addressed JSON document store. Each
// dataset is one file on disk; the file is the sole source of truth and is
// re-read on every access, so nothing survives a restart except the file.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/cognimock/cognimock/internal/errs"
	"github.com/cognimock/cognimock/internal/metrics"
)

// Dataset is one named, durable document addressed by hierarchical paths.
type Dataset interface {
	// Name returns the dataset name (the file base name).
	Name() string
	// Get resolves a path of one or more keys through nested objects.
	// An absent segment yields (nil, nil), not an error.
	Get(ctx context.Context, path ...string) (json.RawMessage, error)
	// Set writes value at path, creating intermediate objects as needed.
	Set(ctx context.Context, path []string, value any) error
	// Delete removes the value at path; absent paths are a no-op.
	Delete(ctx context.Context, path ...string) error
}

// fileDataset persists one JSON document per dataset. The RWMutex is shared
// between all handles for the same name (handed out by the factory), so
// writes to one dataset serialize while reads run concurrently.
type fileDataset struct {
	name string
	file string
	mu   *sync.RWMutex
	log  *zap.Logger
	rec  metrics.Recorder
}

func (d *fileDataset) Name() string { return d.name }

// Get re-reads the file under a read lock and walks the path. A segment that
// is missing, or whose parent is not an object, resolves to nil.
func (d *fileDataset) Get(ctx context.Context, path ...string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("dataset %s: get: empty path", d.name)
	}

	d.mu.RLock()
	raw, err := os.ReadFile(d.file)
	d.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("dataset %s: read: %w", d.name, err)
	}
	d.rec.RecordRead(d.name)

	cur := json.RawMessage(raw)
	for i, seg := range path {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(cur, &obj); err != nil {
			if i == 0 {
				// torn or hand-edited file; never mask as absence
				return nil, fmt.Errorf("dataset %s: %w: %v", d.name, errs.ErrInvalidDocument, err)
			}
			return nil, nil
		}
		next, ok := obj[seg]
		if !ok || bytes.Equal(next, []byte("null")) {
			return nil, nil
		}
		cur = next
	}
	return cur, nil
}

// Set writes value at path under the write lock, then atomically replaces
// the file. Intermediate segments that are absent or non-objects become
// fresh objects.
func (d *fileDataset) Set(ctx context.Context, path []string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(path) == 0 {
		return fmt.Errorf("dataset %s: set: empty path", d.name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	doc, err := d.readDoc()
	if err != nil {
		return err
	}

	parent := doc
	for _, seg := range path[:len(path)-1] {
		child, ok := parent[seg].(map[string]any)
		if !ok {
			child = map[string]any{}
			parent[seg] = child
		}
		parent = child
	}
	parent[path[len(path)-1]] = value

	return d.writeDoc(doc)
}

// Delete removes the value at path. Absent intermediates make it a no-op.
func (d *fileDataset) Delete(ctx context.Context, path ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(path) == 0 {
		return fmt.Errorf("dataset %s: delete: empty path", d.name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	doc, err := d.readDoc()
	if err != nil {
		return err
	}

	parent := doc
	for _, seg := range path[:len(path)-1] {
		child, ok := parent[seg].(map[string]any)
		if !ok {
			return nil
		}
		parent = child
	}
	if _, ok := parent[path[len(path)-1]]; !ok {
		return nil
	}
	delete(parent, path[len(path)-1])

	return d.writeDoc(doc)
}

// readDoc loads the whole document for mutation. Caller holds the write lock.
func (d *fileDataset) readDoc() (map[string]any, error) {
	raw, err := os.ReadFile(d.file)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: read: %w", d.name, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("dataset %s: %w: %v", d.name, errs.ErrInvalidDocument, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// writeDoc marshals the document and replaces the file atomically, so a
// crash mid-write can never leave a torn record behind. Caller holds the
// write lock.
func (d *fileDataset) writeDoc(doc map[string]any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("dataset %s: marshal: %w", d.name, err)
	}
	if err := atomicWrite(d.file, data); err != nil {
		return fmt.Errorf("dataset %s: write: %w", d.name, err)
	}
	d.rec.RecordWrite(d.name)
	d.log.Debug("dataset written", zap.String("dataset", d.name), zap.Int("bytes", len(data)))
	return nil
}

// atomicWrite writes data to a sibling temp file and renames it over path.
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// GetAs decodes the value at path into T. Absent values yield (nil, nil).
func GetAs[T any](ctx context.Context, ds Dataset, path ...string) (*T, error) {
	raw, err := ds.Get(ctx, path...)
	if err != nil || raw == nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("dataset %s: decode %v: %w", ds.Name(), path, err)
	}
	return &v, nil
}

// Item is one key/value member of a stored object.
type Item struct {
	Key   string
	Value json.RawMessage
}

// Items decodes the object at path into key/value pairs preserving the
// file's own member order, which is what gives listings their storage-order
// semantics. An absent path yields (nil, nil).
func Items(ctx context.Context, ds Dataset, path ...string) ([]Item, error) {
	raw, err := ds.Get(ctx, path...)
	if err != nil || raw == nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("dataset %s: decode %v: %w", ds.Name(), path, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("dataset %s: %v: %w: not an object", ds.Name(), path, errs.ErrInvalidDocument)
	}

	var items []Item
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("dataset %s: decode %v: %w", ds.Name(), path, err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("dataset %s: %v: %w: non-string key", ds.Name(), path, errs.ErrInvalidDocument)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("dataset %s: decode %v: %w", ds.Name(), path, err)
		}
		items = append(items, Item{Key: key, Value: value})
	}
	return items, nil
}
