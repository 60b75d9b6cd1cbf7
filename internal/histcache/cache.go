// Package histcache persists bib/index directive fingerprints between
// invocations, so a fresh run of the tool does not repeat a bibliography or
// index pass whose input did not change. Corruption or absence of the cache
// is never an error: the scheduler simply runs the tools again.
package histcache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"texflow/internal/auxscan"
)

// Bump when the payload format changes; older entries are ignored.
const schemaVersion uint16 = 1

// payload is the serialised cache entry for one document.
type payload struct {
	Schema uint16

	BibFingerprint auxscan.Digest
	IndexNames     []string
	IndexPrints    []auxscan.Digest
}

// Cache stores fingerprints on disk, one file per document.
// Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Open initialises a cache at the standard location
// ($XDG_CACHE_HOME/<app> or ~/.cache/<app>).
func Open(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenAt(filepath.Join(base, app))
}

// OpenAt initialises a cache rooted at an explicit directory.
func OpenAt(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(document string) string {
	abs, err := filepath.Abs(document)
	if err != nil {
		abs = document
	}
	key := sha256.Sum256([]byte(abs))
	return filepath.Join(c.dir, hex.EncodeToString(key[:])+".mp")
}

// Load returns the fingerprints recorded for the document, if any.
func (c *Cache) Load(document string) (auxscan.Digest, map[string]auxscan.Digest, bool) {
	if c == nil {
		return auxscan.Digest{}, nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(document))
	if err != nil {
		return auxscan.Digest{}, nil, false
	}
	var p payload
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return auxscan.Digest{}, nil, false
	}
	if p.Schema != schemaVersion || len(p.IndexNames) != len(p.IndexPrints) {
		return auxscan.Digest{}, nil, false
	}
	index := make(map[string]auxscan.Digest, len(p.IndexNames))
	for i, name := range p.IndexNames {
		index[name] = p.IndexPrints[i]
	}
	return p.BibFingerprint, index, true
}

// Store records the fingerprints for the document, replacing any previous
// entry.
func (c *Cache) Store(document string, bib auxscan.Digest, index map[string]auxscan.Digest) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := payload{
		Schema:         schemaVersion,
		BibFingerprint: bib,
	}
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	// Deterministic file contents regardless of map order.
	sort.Strings(names)
	for _, name := range names {
		p.IndexNames = append(p.IndexNames, name)
		p.IndexPrints = append(p.IndexPrints, index[name])
	}

	data, err := msgpack.Marshal(&p)
	if err != nil {
		return err
	}
	tmp := c.pathFor(document) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.pathFor(document))
}
