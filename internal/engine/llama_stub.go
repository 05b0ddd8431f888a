//go:build !llama

package engine

// This file provides a no-CGO stub for the llama factory. It is compiled
// when the 'llama' build tag is NOT set, keeping default builds and CI
// CGO-free. The real factory lives in llama.go (tagged 'llama'). The stub
// refuses to construct an engine rather than mocking output.

type llamaFactory struct {
	ctxSize int
	threads int
}

// NewLlamaFactory returns the runtime factory for this build.
func NewLlamaFactory(ctxSize, threads int) Factory {
	return &llamaFactory{ctxSize: ctxSize, threads: threads}
}

func (f *llamaFactory) Init() error {
	return ErrRuntimeInit("llama support not built (missing 'llama' build tag)")
}

func (f *llamaFactory) New(weights, tokenizer, config []byte) (Engine, error) {
	return nil, ErrRuntimeInit("llama support not built (missing 'llama' build tag)")
}
