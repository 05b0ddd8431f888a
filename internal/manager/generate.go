package manager

import (
	"context"
	"io"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"qwend/internal/engine"
	"qwend/internal/session"
	"qwend/internal/stream"
	"qwend/pkg/types"
)

// Generate runs one generation and streams NDJSON lines to w: a token line
// per emitted token, a stats line every ten tokens, and a single done line
// carrying the parsed reasoning/answer channels. Admission is non-blocking:
// a second request while one is in flight fails with a busy error.
func (m *Manager) Generate(ctx context.Context, req types.GenerateRequest, w io.Writer, flush func()) error {
	m.mu.RLock()
	eng := m.eng
	ready := m.state == StateReady
	m.mu.RUnlock()
	if !ready || eng == nil {
		return ErrNotReady("engine not initialized")
	}

	select {
	case m.genCh <- struct{}{}:
	default:
		return busyError{}
	}
	defer func() { <-m.genCh }()

	m.mu.Lock()
	m.generating = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.generating = false
		m.gensTotal++
		m.mu.Unlock()
	}()

	id := uuid.NewString()
	if m.log != nil {
		m.log.Info().Str("generation_id", id).Int("max_tokens", req.MaxTokens).Msg("generation start")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = m.cfg.MaxTokens
	}
	thinking := req.ThinkingEnabled()

	// The engine keeps sampling state from the previous run; reset before
	// reuse is this manager's job, not the engine's.
	eng.Reset()

	sess := session.New(eng)
	sess.OnStats(func(s session.Snapshot) {
		tokensPerSecond.Set(s.TokensPerSecond)
		writeLine(w, flush, types.StatsLine{
			Tokens:          s.Tokens,
			ElapsedSeconds:  s.ElapsedSeconds,
			TokensPerSecond: s.TokensPerSecond,
		})
	})

	res, err := sess.Run(ctx, session.Request{
		Prompt:    req.Prompt,
		MaxTokens: maxTokens,
		Params: engine.Params{
			Temperature:   req.Temperature,
			TopP:          req.TopP,
			RepeatPenalty: req.RepeatPenalty,
			RepeatLastN:   req.RepeatLastN,
			Seed:          req.Seed,
			MaxTokens:     maxTokens,
			Thinking:      thinking,
		},
	}, func(tok string, n int) {
		tokensTotal.Inc()
		writeLine(w, flush, types.TokenLine{Token: tok, N: n})
	})

	parsed := stream.Split(res.Text, thinking)
	done := types.DoneLine{
		Done:         true,
		Reasoning:    parsed.Reasoning,
		Answer:       parsed.Answer,
		FinishReason: res.FinishReason,
		Stats: types.StatsLine{
			Tokens:          res.Stats.Tokens,
			ElapsedSeconds:  res.Stats.ElapsedSeconds,
			TokensPerSecond: res.Stats.TokensPerSecond,
		},
	}
	if err != nil {
		// The partial output is kept and annotated inline rather than
		// discarded; the stream itself still terminates cleanly.
		done.Error = err.Error()
		if done.Answer != "" {
			done.Answer += " "
		}
		done.Answer += "[error: " + err.Error() + "]"
		if m.log != nil {
			m.log.Error().Str("generation_id", id).Err(err).Int("tokens", res.Tokens).Msg("generation failed")
		}
	} else if m.log != nil {
		m.log.Info().
			Str("generation_id", id).
			Str("finish_reason", res.FinishReason).
			Int("tokens", res.Tokens).
			Float64("tps", res.Stats.TokensPerSecond).
			Msg("generation end")
	}
	generationsTotal.WithLabelValues(res.FinishReason).Inc()
	writeLine(w, flush, done)
	return nil
}

// writeLine encodes one NDJSON line and flushes it so tokens reach the
// client as they are produced.
func writeLine(w io.Writer, flush func(), v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return
	}
	if flush != nil {
		flush()
	}
}
