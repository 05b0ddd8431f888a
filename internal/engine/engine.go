package engine

// Params captures the sampling configuration for one generation. It mirrors
// the knobs the runtime exposes: temperature <= 0 disables temperature
// sampling, top-p outside (0,1) disables nucleus sampling.
type Params struct {
	Temperature   float64
	TopP          float64
	RepeatPenalty float64
	RepeatLastN   int
	Seed          uint64
	MaxTokens     int
	Thinking      bool
}

// Engine is the narrow boundary to the opaque inference runtime. It holds
// single-threaded mutable sampling state: at most one generation may drive
// an Engine at a time, and Reset must be called before reuse. Enforcing both
// is the caller's job.
type Engine interface {
	// Start begins a generation and returns the first produced token.
	Start(prompt string, p Params) (string, error)
	// Next pulls the next token. Only valid after Start.
	Next() (string, error)
	// EOS reports whether the engine has reached end of sequence.
	EOS() bool
	// Reset clears internal generation state for reuse.
	Reset()
	// Close releases engine resources.
	Close() error
}

// Factory bootstraps the runtime and constructs Engine instances from raw
// artifact bytes. Init is a one-time call; New fails with a config error
// when the inputs are malformed.
type Factory interface {
	Init() error
	New(weights, tokenizer, config []byte) (Engine, error)
}
