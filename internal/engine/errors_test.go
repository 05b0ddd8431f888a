package engine

import (
	"errors"
	"testing"
)

func TestErrorPredicates(t *testing.T) {
	if !IsRuntimeInit(ErrRuntimeInit("boom")) {
		t.Fatalf("runtime init predicate")
	}
	if !IsConfig(ErrConfig("bad gguf")) {
		t.Fatalf("config predicate")
	}
	if IsRuntimeInit(ErrConfig("x")) || IsConfig(ErrRuntimeInit("y")) {
		t.Fatalf("predicates must not overlap")
	}
	if IsConfig(errors.New("plain")) {
		t.Fatalf("plain error must not match")
	}
}

func TestStubFactoryFailsFast(t *testing.T) {
	f := NewLlamaFactory(4096, 4)
	if err := f.Init(); err == nil || !IsRuntimeInit(err) {
		t.Skip("built with the llama tag; stub behavior not applicable")
	}
	if _, err := f.New([]byte("w"), []byte("t"), nil); err == nil {
		t.Fatalf("stub must refuse to construct an engine")
	}
}
