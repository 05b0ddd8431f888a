package manager

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"qwend/internal/engine"
	"qwend/pkg/types"
)

// scriptEngine replays fixed tokens through the boundary.
type scriptEngine struct {
	script []string
	pos    int
	resets int
}

func (e *scriptEngine) Start(prompt string, p engine.Params) (string, error) {
	e.pos = 1
	return e.script[0], nil
}

func (e *scriptEngine) Next() (string, error) {
	if e.pos >= len(e.script) {
		return "", nil
	}
	tok := e.script[e.pos]
	e.pos++
	return tok, nil
}

func (e *scriptEngine) EOS() bool    { return e.pos >= len(e.script) }
func (e *scriptEngine) Reset()       { e.pos = 0; e.resets++ }
func (e *scriptEngine) Close() error { return nil }

type scriptFactory struct {
	eng     *scriptEngine
	initErr error
	newErr  error
	gotW    []byte
	gotT    []byte
}

func (f *scriptFactory) Init() error { return f.initErr }

func (f *scriptFactory) New(weights, tokenizer, config []byte) (engine.Engine, error) {
	f.gotW = weights
	f.gotT = tokenizer
	if f.newErr != nil {
		return nil, f.newErr
	}
	return f.eng, nil
}

func artifactServer(t *testing.T, weights, tokenizer []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/w.gguf":
			w.Write(weights)
		case "/t.json":
			w.Write(tokenizer)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestLoadAndGenerate(t *testing.T) {
	weights := bytes.Repeat([]byte("W"), 2048)
	tokenizer := []byte(`{"vocab":{}}`)
	srv := artifactServer(t, weights, tokenizer)
	defer srv.Close()

	fac := &scriptFactory{eng: &scriptEngine{script: []string{"<think>", "A", "</think>", "B", "<|im_end|>", "zz"}}}
	m := New(Config{
		Model:        "test-model",
		WeightsURL:   srv.URL + "/w.gguf",
		TokenizerURL: srv.URL + "/t.json",
		MaxTokens:    16,
		Factory:      fac,
	})
	if m.Ready() {
		t.Fatalf("must not be ready before load")
	}
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !m.Ready() {
		t.Fatalf("expected ready after load")
	}
	if !bytes.Equal(fac.gotW, weights) || !bytes.Equal(fac.gotT, tokenizer) {
		t.Fatalf("factory received wrong artifact bytes")
	}
	st := m.Status()
	if st.State != "ready" || st.Progress != 100 {
		t.Fatalf("status after load: %+v", st)
	}

	var out bytes.Buffer
	err := m.Generate(context.Background(), types.GenerateRequest{Prompt: "hi"}, &out, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if fac.eng.resets != 1 {
		t.Fatalf("engine must be reset before reuse, resets=%d", fac.eng.resets)
	}

	var tokens []string
	var done types.DoneLine
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		line := sc.Bytes()
		if bytes.Contains(line, []byte(`"done":true`)) {
			if err := json.Unmarshal(line, &done); err != nil {
				t.Fatalf("done line: %v", err)
			}
			continue
		}
		var tl types.TokenLine
		if err := json.Unmarshal(line, &tl); err == nil && tl.Token != "" {
			tokens = append(tokens, tl.Token)
		}
	}
	// The sentinel token is never delivered and "zz" after it never streams.
	if strings.Join(tokens, "") != "<think>A</think>B" {
		t.Fatalf("streamed tokens: %v", tokens)
	}
	if !done.Done || done.Reasoning != "A" || done.Answer != "B" || done.FinishReason != "stop" {
		t.Fatalf("done line: %+v", done)
	}
	if done.Stats.Tokens != 4 {
		t.Fatalf("stats tokens: %+v", done.Stats)
	}
}

func TestGenerateNotReady(t *testing.T) {
	m := New(Config{Factory: &scriptFactory{}})
	var out bytes.Buffer
	err := m.Generate(context.Background(), types.GenerateRequest{Prompt: "x"}, &out, nil)
	if !IsNotReady(err) {
		t.Fatalf("expected not-ready error, got %v", err)
	}
}

func TestGenerateBusy(t *testing.T) {
	fac := &scriptFactory{eng: &scriptEngine{script: []string{"a"}}}
	srv := artifactServer(t, []byte("w"), []byte("t"))
	defer srv.Close()
	m := New(Config{
		Model:        "m",
		WeightsURL:   srv.URL + "/w.gguf",
		TokenizerURL: srv.URL + "/t.json",
		Factory:      fac,
	})
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	// Occupy the single in-flight slot directly.
	m.genCh <- struct{}{}
	defer func() { <-m.genCh }()
	var out bytes.Buffer
	err := m.Generate(context.Background(), types.GenerateRequest{Prompt: "x"}, &out, nil)
	if !IsBusy(err) {
		t.Fatalf("expected busy error, got %v", err)
	}
}

func TestLoadFailsOnMissingArtifact(t *testing.T) {
	srv := artifactServer(t, []byte("w"), []byte("t"))
	defer srv.Close()
	fac := &scriptFactory{eng: &scriptEngine{script: []string{"a"}}}
	m := New(Config{
		Model:        "m",
		WeightsURL:   srv.URL + "/missing.gguf",
		TokenizerURL: srv.URL + "/t.json",
		Factory:      fac,
	})
	if err := m.Load(context.Background()); err == nil {
		t.Fatalf("expected load failure")
	}
	if m.Ready() {
		t.Fatalf("must not be ready after failed load")
	}
	if st := m.Status(); st.State != "error" || st.LastError == "" {
		t.Fatalf("status after failed load: %+v", st)
	}
}

func TestLoadUsesCache(t *testing.T) {
	weights := []byte("cached-weights")
	tokenizer := []byte("tok")
	srv := artifactServer(t, weights, tokenizer)
	fac := &scriptFactory{eng: &scriptEngine{script: []string{"a"}}}
	dir := t.TempDir()
	m := New(Config{
		Model:        "m",
		WeightsURL:   srv.URL + "/w.gguf",
		TokenizerURL: srv.URL + "/t.json",
		CacheDir:     dir,
		Factory:      fac,
	})
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("first load: %v", err)
	}
	srv.Close() // second load must not touch the network

	fac2 := &scriptFactory{eng: &scriptEngine{script: []string{"a"}}}
	m2 := New(Config{
		Model:        "m",
		WeightsURL:   srv.URL + "/w.gguf",
		TokenizerURL: srv.URL + "/t.json",
		CacheDir:     dir,
		Factory:      fac2,
	})
	if err := m2.Load(context.Background()); err != nil {
		t.Fatalf("cached load: %v", err)
	}
	if !bytes.Equal(fac2.gotW, weights) {
		t.Fatalf("cache returned wrong weights: %q", fac2.gotW)
	}
}
