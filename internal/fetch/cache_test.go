package fetch

import (
	"bytes"
	"testing"
)

func TestCacheRoundTrip(t *testing.T) {
	c, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	key := c.Key("https://host/models/qwen3-0.6b-q8.gguf?rev=1")
	if key != "qwen3-0.6b-q8.gguf" {
		t.Fatalf("unexpected key: %q", key)
	}
	if _, ok := c.Get(key); ok {
		t.Fatalf("unexpected hit on empty cache")
	}
	want := []byte("weights")
	if err := c.Put(key, want); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok := c.Get(key)
	if !ok || !bytes.Equal(got, want) {
		t.Fatalf("get after put: ok=%v got=%q", ok, got)
	}
}
