package manager

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"qwend/internal/engine"
	"qwend/internal/fetch"
	"qwend/pkg/types"
)

// State represents lifecycle state of the manager.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Config carries the manager's construction parameters.
type Config struct {
	Model        string
	WeightsURL   string
	TokenizerURL string
	ConfigURL    string
	CacheDir     string
	MaxTokens    int
	Factory      engine.Factory
}

// Manager owns the single engine instance and everything around it: artifact
// bootstrap, admission of one generation at a time, and status reporting.
type Manager struct {
	mu          sync.RWMutex
	state       State
	lastErr     string
	progress    float64
	bytesLoaded int64
	generating  bool
	gensTotal   uint64
	startedAt   time.Time

	cfg     Config
	factory engine.Factory
	eng     engine.Engine
	// genCh size 1: the engine is a single exclusively-owned mutable
	// resource, so only one generation may drive it at a time.
	genCh chan struct{}

	log *zerolog.Logger
}

// New constructs a Manager in the loading state. Call Load before serving.
func New(cfg Config) *Manager {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 256
	}
	return &Manager{
		state:     StateLoading,
		cfg:       cfg,
		factory:   cfg.Factory,
		genCh:     make(chan struct{}, 1),
		startedAt: time.Now(),
	}
}

// SetLogger installs a structured logger used by the manager.
func (m *Manager) SetLogger(l zerolog.Logger) { m.log = &l }

func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateReady && m.eng != nil
}

// Status returns a read-only projection of the manager state.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := time.Now()
	return types.StatusResponse{
		State:            string(m.state),
		Model:            m.cfg.Model,
		Progress:         m.progress,
		BytesLoaded:      m.bytesLoaded,
		Generating:       m.generating,
		GenerationsTotal: m.gensTotal,
		LastError:        m.lastErr,
		UptimeSeconds:    int64(now.Sub(m.startedAt).Seconds()),
		ServerTimeUnix:   now.Unix(),
	}
}

// Close releases the engine.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.eng != nil {
		err := m.eng.Close()
		m.eng = nil
		return err
	}
	return nil
}

func (m *Manager) setProgress(p fetch.Progress) {
	m.mu.Lock()
	m.progress = p.Percent
	m.bytesLoaded = p.BytesLoaded
	m.mu.Unlock()
	fetch.SetProgressMetric(m.cfg.Model, p.Percent)
}

func (m *Manager) setState(s State, errMsg string) {
	m.mu.Lock()
	m.state = s
	m.lastErr = errMsg
	m.mu.Unlock()
}
