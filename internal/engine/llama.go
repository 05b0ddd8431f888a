//go:build llama

package engine

import (
	"errors"
	"os"
	"path/filepath"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaFactory holds global config used to construct engine instances.
type llamaFactory struct {
	ctxSize int
	threads int
}

// NewLlamaFactory returns the runtime factory for this build.
func NewLlamaFactory(ctxSize, threads int) Factory {
	return &llamaFactory{ctxSize: ctxSize, threads: threads}
}

func (f *llamaFactory) Init() error {
	// llama.cpp needs no separate bootstrap beyond linking; per-model setup
	// happens in New.
	return nil
}

// New materializes the GGUF weights to disk (llama.cpp loads by path) and
// constructs the model. The tokenizer bytes are unused here: GGUF embeds the
// vocabulary, so a separate tokenizer artifact only matters for runtimes
// that load weights and vocab independently.
func (f *llamaFactory) New(weights, tokenizer, config []byte) (Engine, error) {
	if len(weights) == 0 {
		return nil, ErrConfig("empty weights buffer")
	}
	dir, err := os.MkdirTemp("", "qwend-weights-*")
	if err != nil {
		return nil, ErrConfig("stage weights: " + err.Error())
	}
	path := filepath.Join(dir, "model.gguf")
	if err := os.WriteFile(path, weights, 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return nil, ErrConfig("stage weights: " + err.Error())
	}
	m, err := llama.New(path, llama.SetContext(f.ctxSize))
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, ErrConfig("load model: " + err.Error())
	}
	return &llamaEngine{model: m, threads: f.threads, stageDir: dir}, nil
}

// llamaEngine adapts llama.cpp's push-style token callback to the pull-style
// boundary. Predict runs on its own goroutine and feeds toks; Next receives.
type llamaEngine struct {
	model    *llama.LLama
	threads  int
	stageDir string

	toks chan string
	stop chan struct{}
	err  error
	done chan struct{}
	eos  bool
}

func (e *llamaEngine) Start(prompt string, p Params) (string, error) {
	if e.model == nil {
		return "", errors.New("llama model not initialized")
	}
	e.toks = make(chan string)
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	e.err = nil
	e.eos = false

	e.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-e.stop:
			return false
		case e.toks <- tok:
			return true
		}
	})
	po := predictOptions(p, e.threads)
	go func() {
		defer close(e.toks)
		defer close(e.done)
		if _, err := e.model.Predict(prompt, po...); err != nil {
			e.err = err
		}
	}()
	return e.Next()
}

func (e *llamaEngine) Next() (string, error) {
	tok, ok := <-e.toks
	if !ok {
		e.eos = true
		return "", e.err
	}
	return tok, nil
}

func (e *llamaEngine) EOS() bool { return e.eos }

// Reset abandons any in-flight prediction and drains it so the engine can be
// reused for a fresh Start.
func (e *llamaEngine) Reset() {
	if e.stop == nil {
		return
	}
	select {
	case <-e.stop:
	default:
		close(e.stop)
	}
	for range e.toks {
	}
	<-e.done
	e.eos = false
	e.err = nil
}

func (e *llamaEngine) Close() error {
	e.Reset()
	if e.model != nil {
		e.model.Free()
		e.model = nil
	}
	if e.stageDir != "" {
		_ = os.RemoveAll(e.stageDir)
		e.stageDir = ""
	}
	return nil
}

func nz(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func nzf(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}

// predictOptions converts boundary params into go-llama.cpp options.
func predictOptions(p Params, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(nz(p.MaxTokens, 256)),
		llama.SetThreads(nz(threads, 4)),
		llama.SetTopP(nzf(float32(p.TopP), llama.DefaultOptions.TopP)),
		llama.SetTemperature(nzf(float32(p.Temperature), llama.DefaultOptions.Temperature)),
		llama.SetPenalty(nzf(float32(p.RepeatPenalty), llama.DefaultOptions.Penalty)),
	}
	if p.RepeatLastN > 0 {
		po = append(po, llama.SetRepeat(p.RepeatLastN))
	}
	if p.Seed != 0 {
		po = append(po, llama.SetSeed(int(p.Seed)))
	}
	return po
}
