package embeddings

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

func TestCache(t *testing.T) {
	fs := afero.NewMemMapFs()
	cache := NewCache(fs, "/notebooks/"+CacheDir)

	key := Key("nomic-embed-text", "hello")
	if _, ok := cache.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}

	vec := []float64{0.5, -1.25, 3}
	if err := cache.Put(key, vec); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, ok := cache.Get(key)
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if diff := cmp.Diff(vec, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}

	if Key("other-model", "hello") == key {
		t.Error("keys should differ per model")
	}

	if err := cache.Put(key, nil); err == nil {
		t.Error("expected error storing empty vector")
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok := cache.Get(key); ok {
		t.Error("expected miss after Clear")
	}
}

func TestCacheDamagedEntry(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/cache"
	cache := NewCache(fs, dir)

	key := Key("m", "t")
	if err := afero.WriteFile(fs, filepath.Join(dir, key+".bin"), []byte{1, 2, 3}, 0644); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.Get(key); ok {
		t.Error("expected damaged entry to miss")
	}
}
