package transpile

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
)

const cacheFile = ".gulcache"

// BuildCache maps source paths (relative to the source root, slash
// separated) to the SHA-256 of their content at the last successful
// transpile. It lives as a CBOR sidecar in the destination directory so the
// walker can skip unchanged files.
type BuildCache struct {
	path   string
	Hashes map[string]string `cbor:"hashes"`
	dirty  bool
}

var cacheEncMode cbor.EncMode

func init() {
	var err error
	cacheEncMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

// LoadCache reads the sidecar from destDir. A missing or unreadable sidecar
// yields an empty cache; the transpile then rewrites everything.
func LoadCache(destDir string) *BuildCache {
	c := &BuildCache{
		path:   filepath.Join(destDir, cacheFile),
		Hashes: make(map[string]string),
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return c
	}
	if err := cbor.Unmarshal(data, c); err != nil {
		c.Hashes = make(map[string]string)
	}
	if c.Hashes == nil {
		c.Hashes = make(map[string]string)
	}
	return c
}

// Unchanged reports whether rel still hashes to its cached digest.
func (c *BuildCache) Unchanged(rel string, src []byte) bool {
	h, ok := c.Hashes[rel]
	return ok && h == hashBytes(src)
}

// Update records the digest for rel.
func (c *BuildCache) Update(rel string, src []byte) {
	c.Hashes[rel] = hashBytes(src)
	c.dirty = true
}

// Save writes the sidecar if anything changed since load.
func (c *BuildCache) Save() error {
	if !c.dirty {
		return nil
	}
	data, err := cacheEncMode.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}

func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
