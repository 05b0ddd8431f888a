package session

import (
	"context"
	"runtime"
	"strings"
	"time"

	"qwend/internal/engine"
)

// Phase is the lifecycle state of a generation. Streaming is the only
// non-terminal phase; there are no transitions out of the other three.
type Phase string

const (
	PhaseStreaming Phase = "streaming"
	PhaseDone      Phase = "done"
	PhaseStopped   Phase = "stopped"
	PhaseError     Phase = "error"
)

// sentinels mark loop termination when they appear inside token text. The
// token carrying one is never emitted as content.
var sentinels = []string{"<|im_end|>", "<|endoftext|>"}

// yieldEvery is the token interval between scheduler yields and stats
// samples during streaming.
const yieldEvery = 10

// Request is the immutable configuration for one generation run.
type Request struct {
	Prompt    string
	MaxTokens int
	Params    engine.Params
}

// Result summarizes a finished run. Text holds everything accumulated before
// the run ended, including partial output from stopped or failed runs.
type Result struct {
	Text         string
	Tokens       int
	Phase        Phase
	FinishReason string
	Stats        Snapshot
}

// Session drives one strictly sequential generation against an engine the
// caller exclusively owns. The caller must Reset the engine between runs.
type Session struct {
	eng engine.Engine
	// yield suspends the goroutine every yieldEvery tokens so long
	// generations do not monopolize the scheduler.
	yield func()
	// onStats, when set, receives a throughput sample every yieldEvery
	// tokens and once more at completion.
	onStats func(Snapshot)
	now     func() time.Time
}

// New constructs a Session over eng.
func New(eng engine.Engine) *Session {
	return &Session{eng: eng, yield: runtime.Gosched, now: time.Now}
}

// OnStats installs a stats callback. Must be called before Run.
func (s *Session) OnStats(fn func(Snapshot)) { s.onStats = fn }

// Run executes the generation loop. onToken is invoked synchronously, in
// order, exactly once per emitted token, before the scheduler yield for that
// step. Cancellation is polled at the top of each iteration and produces a
// stopped result with the partial text, not an error.
func (s *Session) Run(ctx context.Context, req Request, onToken func(tok string, n int)) (Result, error) {
	start := s.now()
	var b strings.Builder
	count := 0

	finish := func(phase Phase, reason string, err error) (Result, error) {
		res := Result{
			Text:         b.String(),
			Tokens:       count,
			Phase:        phase,
			FinishReason: reason,
			Stats:        Sample(count, s.now().Sub(start)),
		}
		if s.onStats != nil {
			s.onStats(res.Stats)
		}
		return res, err
	}

	if ctx.Err() != nil {
		return finish(PhaseStopped, "cancelled", nil)
	}

	first, err := s.eng.Start(req.Prompt, req.Params)
	if err != nil {
		return finish(PhaseError, "error", generationError{cause: err})
	}
	b.WriteString(first)
	count = 1
	if onToken != nil {
		onToken(first, count)
	}

	for count < req.MaxTokens {
		if ctx.Err() != nil {
			return finish(PhaseStopped, "cancelled", nil)
		}
		if s.eng.EOS() {
			return finish(PhaseDone, "stop", nil)
		}
		tok, err := s.eng.Next()
		if err != nil {
			return finish(PhaseError, "error", generationError{cause: err})
		}
		if tok == "" && s.eng.EOS() {
			return finish(PhaseDone, "stop", nil)
		}
		if isSentinel(tok) {
			return finish(PhaseDone, "stop", nil)
		}
		b.WriteString(tok)
		count++
		if onToken != nil {
			onToken(tok, count)
		}
		if count%yieldEvery == 0 {
			if s.onStats != nil {
				s.onStats(Sample(count, s.now().Sub(start)))
			}
			s.yield()
		}
	}
	return finish(PhaseDone, "length", nil)
}

func isSentinel(tok string) bool {
	for _, m := range sentinels {
		if strings.Contains(tok, m) {
			return true
		}
	}
	return false
}
