package embeddings

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// CacheDir is the directory under the notebooks root holding cached vectors.
const CacheDir = ".embeddings"

// Cache stores embedding vectors on disk keyed by model and text, so
// unchanged notes are not re-embedded on every search.
// Each file is a little-endian float64 array.
type Cache struct {
	fs  afero.Fs
	dir string
}

// NewCache returns a cache rooted at dir.
func NewCache(fs afero.Fs, dir string) *Cache {
	return &Cache{fs: fs, dir: dir}
}

// Key derives the cache key for text embedded with model.
func Key(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".bin")
}

// Get returns the cached vector for key. A missing or damaged entry reports
// false.
func (c *Cache) Get(key string) ([]float64, bool) {
	data, err := afero.ReadFile(c.fs, c.path(key))
	if err != nil {
		return nil, false
	}
	vec, err := decode(data)
	if err != nil || Validate(vec) != nil {
		return nil, false
	}
	return vec, true
}

// Put stores vec under key.
func (c *Cache) Put(key string, vec []float64) error {
	if err := Validate(vec); err != nil {
		return err
	}
	if err := c.fs.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create embedding cache: %w", err)
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, vec); err != nil {
		return fmt.Errorf("failed to encode embedding: %w", err)
	}
	if err := afero.WriteFile(c.fs, c.path(key), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write embedding: %w", err)
	}
	return nil
}

// Clear removes every cached vector.
func (c *Cache) Clear() error {
	if err := c.fs.RemoveAll(c.dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear embedding cache: %w", err)
	}
	return nil
}

func decode(data []byte) ([]float64, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("embedding file is empty")
	}
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("invalid embedding file size: %d (not a multiple of 8)", len(data))
	}
	vec := make([]float64, len(data)/8)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, vec); err != nil {
		return nil, fmt.Errorf("failed to decode embedding: %w", err)
	}
	return vec, nil
}
