package types

// GenerateRequest is the payload accepted by POST /generate.
type GenerateRequest struct {
	// Required prompt text to generate a completion for.
	// example: Why is the sky blue?
	Prompt string `json:"prompt" example:"Why is the sky blue?"`
	// Maximum number of new tokens to generate. Defaults to the server value when omitted.
	// example: 256
	MaxTokens int `json:"max_tokens,omitempty" example:"256"`
	// Sampling temperature (higher = more random). <= 0 disables temperature sampling.
	// example: 0.7
	Temperature float64 `json:"temperature,omitempty" example:"0.7"`
	// Nucleus sampling probability. Values outside (0,1) disable top-p.
	// example: 0.9
	TopP float64 `json:"top_p,omitempty" example:"0.9"`
	// Repeat penalty applied over the last repeat_last_n tokens.
	// example: 1.1
	RepeatPenalty float64 `json:"repeat_penalty,omitempty" example:"1.1"`
	// Window of recent tokens considered by the repeat penalty.
	// example: 64
	RepeatLastN int `json:"repeat_last_n,omitempty" example:"64"`
	// Random seed for reproducibility; 0 or omitted lets the server choose.
	// example: 42
	Seed uint64 `json:"seed,omitempty" example:"42"`
	// Emit a separate reasoning channel parsed from <think> blocks. Defaults to true.
	Thinking *bool `json:"thinking,omitempty" example:"true"`
}

// ThinkingEnabled resolves the optional Thinking flag (default true).
func (r GenerateRequest) ThinkingEnabled() bool {
	return r.Thinking == nil || *r.Thinking
}

// TokenLine is one NDJSON line streamed while a generation is running.
type TokenLine struct {
	// Token text as produced by the engine.
	Token string `json:"token"`
	// 1-based index of this token within the generation.
	// example: 7
	N int `json:"n" example:"7"`
}

// StatsLine reports throughput for a generation.
type StatsLine struct {
	// Number of tokens emitted so far.
	// example: 120
	Tokens int `json:"tokens" example:"120"`
	// Elapsed wall time in seconds.
	// example: 14.2
	ElapsedSeconds float64 `json:"elapsed_seconds" example:"14.2"`
	// Tokens per second, rounded to two decimals.
	// example: 8.45
	TokensPerSecond float64 `json:"tokens_per_second" example:"8.45"`
}

// DoneLine is the final NDJSON line of a generation stream.
type DoneLine struct {
	Done bool `json:"done"`
	// Reasoning channel content (empty when thinking is disabled).
	Reasoning string `json:"reasoning"`
	// Final answer channel content.
	Answer string `json:"answer"`
	// One of: stop, length, cancelled, error.
	// example: stop
	FinishReason string    `json:"finish_reason" example:"stop"`
	Stats        StatsLine `json:"stats"`
	// Present when finish_reason is error.
	Error string `json:"error,omitempty"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall daemon state: loading, ready, error.
	// example: ready
	State string `json:"state" example:"ready"`
	// Model identifier served by this daemon.
	// example: qwen3-0.6b-q8
	Model string `json:"model" example:"qwen3-0.6b-q8"`
	// Artifact load progress on a 0-100 scale.
	// example: 100
	Progress float64 `json:"progress" example:"100"`
	// Bytes of the weights artifact received so far.
	BytesLoaded int64 `json:"bytes_loaded"`
	// True while a generation is in flight.
	Generating bool `json:"generating"`
	// Total generations completed since start.
	// example: 12
	GenerationsTotal uint64 `json:"generations_total" example:"12"`
	// Last error observed (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
