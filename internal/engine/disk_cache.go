package engine

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"gqlmerge/internal/diag"
)

// bump when DiskPayload changes shape; old entries then read as misses
const diskCacheSchemaVersion uint16 = 1

// DiskCache persists failed merge outcomes between runs, keyed like Cached.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is one cached outcome. Engine is the namespace of the engine
// that produced it; entries of another namespace are ignored by Cached.
type DiskPayload struct {
	Schema      uint16            `msgpack:"v"`
	Engine      string            `msgpack:"engine"`
	FragmentIDs []string          `msgpack:"ids"`
	Diagnostics []diag.Diagnostic `msgpack:"diags"`
	StoredAt    int64             `msgpack:"at"`
}

// OpenDiskCache opens <user cache dir>/<app>.
func OpenDiskCache(app string) (*DiskCache, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("no user cache directory: %w", err)
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// outcomes/ab/abcdef....mp
func (c *DiskCache) entryPath(key Key) string {
	name := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "outcomes", name[:2], name+".mp")
}

// Put replaces the entry for key atomically.
func (c *DiskCache) Put(key Key, payload *DiskPayload) error {
	if c == nil || payload == nil {
		return nil
	}
	payload.Schema = diskCacheSchemaVersion
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	dst := c.entryPath(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".put-*")
	if err != nil {
		return err
	}
	_, werr := tmp.Write(data)
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Rename(tmp.Name(), dst)
	}
	if werr != nil {
		_ = os.Remove(tmp.Name())
	}
	return werr
}

// Get fills out and reports whether a current-version entry exists.
func (c *DiskCache) Get(key Key, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	data, err := os.ReadFile(c.entryPath(key))
	c.mu.RUnlock()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, err
	}
	if err := msgpack.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("corrupt cache entry %x: %w", key[:4], err)
	}
	return out.Schema == diskCacheSchemaVersion, nil
}

// DropAll removes every entry; the cache stays usable.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "outcomes"))
}
