package cells

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/Yiling-J/theine-go"

	"github.com/ajitpratap0/colkit/pkg/compression"
	"github.com/ajitpratap0/colkit/pkg/errors"
	"github.com/ajitpratap0/colkit/pkg/metrics"
)

// Loader reads cell payloads from disk relative to a root directory,
// decompressing by extension and keeping recently loaded payloads in a
// size-bounded cache. A nil *Loader reads from disk without caching.
type Loader struct {
	root  string
	cache *theine.Cache[string, []byte]
}

// NewLoader creates a loader rooted at root. cacheBytes bounds the total
// size of cached payloads; zero disables caching.
func NewLoader(root string, cacheBytes int64) (*Loader, error) {
	l := &Loader{root: root}
	if cacheBytes <= 0 {
		return l, nil
	}
	cache, err := theine.NewBuilder[string, []byte](cacheBytes).Build()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to build cell cache").
			WithDetail("cache_bytes", cacheBytes)
	}
	l.cache = cache
	return l, nil
}

// Load returns the decompressed payload at path. The returned slice belongs
// to the caller; the cached payload is never handed out.
func (l *Loader) Load(path string) ([]byte, error) {
	full := path
	if l != nil && l.root != "" && !filepath.IsAbs(path) {
		full = filepath.Join(l.root, path)
	}

	if l != nil && l.cache != nil {
		if data, ok := l.cache.Get(full); ok {
			metrics.CellMaterializations.WithLabelValues("file", "hit").Inc()
			return bytes.Clone(data), nil
		}
	}

	raw, err := os.ReadFile(full) //nolint:gosec // G304: cell paths are supplied by the dataset owner
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read cell").
			WithDetail("path", full)
	}

	data, err := compression.Decompress(compression.ForPath(full), raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to decompress cell").
			WithDetail("path", full).
			WithDetail("algorithm", string(compression.ForPath(full)))
	}
	metrics.CellMaterializations.WithLabelValues("file", "miss").Inc()

	if l != nil && l.cache != nil {
		l.cache.Set(full, data, int64(len(data)))
		return bytes.Clone(data), nil
	}
	return data, nil
}

// Close releases the cache
func (l *Loader) Close() {
	if l != nil && l.cache != nil {
		l.cache.Close()
	}
}
