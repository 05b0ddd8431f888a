package manager

import (
	"context"

	"qwend/internal/fetch"
)

// Load bootstraps the runtime, acquires the model artifacts, and constructs
// the engine. It runs once at startup; a load or bootstrap failure leaves
// the manager in a terminal error state that requires a restart, matching
// the no-retry policy.
func (m *Manager) Load(ctx context.Context) error {
	m.setState(StateLoading, "")

	if err := m.factory.Init(); err != nil {
		m.setState(StateError, err.Error())
		return err
	}
	m.setProgress(fetch.Progress{Percent: 10})

	var cache *fetch.Cache
	if m.cfg.CacheDir != "" {
		c, err := fetch.NewCache(m.cfg.CacheDir)
		if err != nil {
			// A broken cache dir only disables caching; the load proceeds.
			if m.log != nil {
				m.log.Warn().Err(err).Str("dir", m.cfg.CacheDir).Msg("artifact cache disabled")
			}
		} else {
			cache = c
		}
	}

	weights, err := m.acquire(ctx, cache, m.cfg.WeightsURL, true)
	if err != nil {
		m.setState(StateError, err.Error())
		return err
	}
	tokenizer, err := m.acquire(ctx, cache, m.cfg.TokenizerURL, false)
	if err != nil {
		m.setState(StateError, err.Error())
		return err
	}
	var genConfig []byte
	if m.cfg.ConfigURL != "" {
		genConfig, err = m.acquire(ctx, cache, m.cfg.ConfigURL, false)
		if err != nil {
			m.setState(StateError, err.Error())
			return err
		}
	}

	eng, err := m.factory.New(weights, tokenizer, genConfig)
	if err != nil {
		m.setState(StateError, err.Error())
		return err
	}

	m.mu.Lock()
	m.eng = eng
	m.state = StateReady
	m.progress = 100
	m.mu.Unlock()
	fetch.SetProgressMetric(m.cfg.Model, 100)
	if m.log != nil {
		m.log.Info().Str("model", m.cfg.Model).Int64("weights_bytes", int64(len(weights))).Msg("engine ready")
	}
	return nil
}

// acquire fetches one artifact, consulting the cache first. Progress
// telemetry is only wired for the weights blob; the other artifacts are
// small enough not to matter.
func (m *Manager) acquire(ctx context.Context, cache *fetch.Cache, url string, tracked bool) ([]byte, error) {
	var key string
	if cache != nil {
		key = cache.Key(url)
		if b, ok := cache.Get(key); ok {
			if m.log != nil {
				m.log.Info().Str("artifact", key).Int("bytes", len(b)).Msg("artifact cache hit")
			}
			return b, nil
		}
	}
	var onProgress func(fetch.Progress)
	if tracked {
		onProgress = m.setProgress
	}
	b, err := fetch.New(onProgress).Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		if err := cache.Put(key, b); err != nil && m.log != nil {
			m.log.Warn().Err(err).Str("artifact", key).Msg("artifact cache write failed")
		}
	}
	return b, nil
}
