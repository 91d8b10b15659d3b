package sitediff

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"

	"github.com/syndtr/goleveldb/leveldb"
	"go.uber.org/zap"
)

// pageCache persists fetched pages across runs, keyed by full normalized URL.
// Entries never expire; wiping the directory or --refresh forces refetches.
// goleveldb's lock file rejects a second process on the same directory.
type pageCache struct {
	db  *leveldb.DB
	log *zap.SugaredLogger
}

func newPageCache(path string, log *zap.SugaredLogger) (*pageCache, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open page cache %s: %w", path, err)
	}
	return &pageCache{db: db, log: log}, nil
}

func (c *pageCache) Close() error {
	return c.db.Close()
}

// Get returns the cached entry for key. A corrupt entry is dropped and
// reported as a miss so the caller refetches it.
func (c *pageCache) Get(key string) (CacheEntry, bool, error) {
	b, err := c.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return CacheEntry{}, false, nil
	}
	if err != nil {
		return CacheEntry{}, false, fmt.Errorf("cache read %q: %w", key, err)
	}
	var ent CacheEntry
	if err := decodeGob(b, &ent); err != nil {
		c.log.Warnw("dropping corrupt cache entry", "url", key, "error", err)
		if err := c.db.Delete([]byte(key), nil); err != nil {
			return CacheEntry{}, false, fmt.Errorf("cache delete %q: %w", key, err)
		}
		return CacheEntry{}, false, nil
	}
	return ent, true, nil
}

func (c *pageCache) Put(key string, ent CacheEntry) error {
	b, err := encodeGob(ent)
	if err != nil {
		return fmt.Errorf("cache encode %q: %w", key, err)
	}
	if err := c.db.Put([]byte(key), b, nil); err != nil {
		return fmt.Errorf("cache write %q: %w", key, err)
	}
	return nil
}

// Count returns the number of stored entries.
func (c *pageCache) Count() (int, error) {
	it := c.db.NewIterator(nil, nil)
	defer it.Release()
	n := 0
	for it.Next() {
		n++
	}
	if err := it.Error(); err != nil {
		return 0, fmt.Errorf("cache scan: %w", err)
	}
	return n, nil
}

// ---- encoding ----

func encodeGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(b []byte, v any) error {
	dec := gob.NewDecoder(bytes.NewReader(b))
	return dec.Decode(v)
}

func init() {
	// Ensure http.Header is registered for gob.
	gob.Register(http.Header{})
}
