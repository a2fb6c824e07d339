// Package ssr implements the SSR worker pool and its workers: a
// fixed-size set of isolated goja JS runtimes prerendering a bundle on
// demand, with coarse backpressure, a health probe, and hot-swappable
// construction. Each worker owns a bounded request queue of its own
// rather than sharing one queue pool-wide, since each worker's JS
// runtime is thread-affine and must not be handed work chosen by any
// worker but its own. Dispatch is round-robin across workers, and the
// pool can be swapped out wholesale behind an RWMutex for hot-reload.
package ssr

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

const (
	// MaxPayloadBytes is the hard limit on a render config's serialized size.
	MaxPayloadBytes = 5 * 1024 * 1024
	overloadRetryAfter = 5 * time.Second
	healthProbeTimeout  = 5 * time.Second
)

// Config is the pool's validated construction input.
type Config struct {
	WorkerCount   int
	MaxPending    int
	RenderTimeout time.Duration
	NodeEnv       string
}

func (c Config) validate() error {
	if c.WorkerCount <= 0 {
		return fmt.Errorf("ssr: worker_count must be > 0, got %d", c.WorkerCount)
	}
	if c.MaxPending <= 0 {
		return fmt.Errorf("ssr: max_pending must be > 0, got %d", c.MaxPending)
	}
	if c.RenderTimeout <= 0 {
		return fmt.Errorf("ssr: render_timeout_ms must be > 0")
	}
	return nil
}

// Pool owns N workers sharing one compiled Bundle.
type Pool struct {
	cfg     Config
	bundle  *Bundle
	workers []*Worker
	counter uint64
	logger  *zap.Logger
}

// loadBundle validates that path exists, is a regular file, and has a
// .js extension, then compiles it once. Any violation is a BundleError.
func loadBundle(path string) (*Bundle, error) {
	if filepath.Ext(path) != ".js" {
		return nil, newBundleError(fmt.Sprintf("bundle path %q must have a .js extension", path))
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, newBundleError(err.Error())
	}
	if !info.Mode().IsRegular() {
		return nil, newBundleError(fmt.Sprintf("bundle path %q is not a regular file", path))
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, newBundleError(err.Error())
	}
	program, err := goja.Compile(path, string(src), true)
	if err != nil {
		return nil, newBundleError(err.Error())
	}
	return &Bundle{path: path, program: program}, nil
}

// NewPool validates cfg, loads and compiles the bundle at bundlePath once,
// and spawns cfg.WorkerCount workers sharing it.
func NewPool(cfg Config, bundlePath string, logger *zap.Logger) (*Pool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.validate(); err != nil {
		return nil, newBundleError(err.Error())
	}
	bundle, err := loadBundle(bundlePath)
	if err != nil {
		return nil, err
	}

	workers := make([]*Worker, cfg.WorkerCount)
	for i := range workers {
		workers[i] = newWorker(bundle, cfg.NodeEnv, cfg.MaxPending)
	}

	return &Pool{cfg: cfg, bundle: bundle, workers: workers, logger: logger}, nil
}

// WarmUp sends one minimal-payload render to each worker sequentially.
// Failures are logged, not fatal: a cold JS engine is not a construction
// failure.
func (p *Pool) WarmUp(ctx context.Context) {
	for i := range p.workers {
		if _, err := p.Render(ctx, map[string]any{"warmup": true}); err != nil {
			p.logger.Warn("ssr: warm-up render failed", zap.Int("worker", i), zap.Error(err))
		}
	}
}

// anyWorkerHasCapacity is the coarse, racy-by-design pre-check: it
// prevents unbounded latency growth, not every possible overload under
// concurrent callers racing the same check.
func (p *Pool) anyWorkerHasCapacity() bool {
	for _, w := range p.workers {
		if w.freeSlots() > 0 {
			return true
		}
	}
	return false
}

// Render serializes config once, round-robins to a worker, and waits for
// its reply (or render_timeout_ms, or ctx cancellation). config must
// serialize to at most MaxPayloadBytes or PayloadTooLarge is returned
// without touching any worker.
func (p *Pool) Render(ctx context.Context, config any) (string, error) {
	payload, err := json.Marshal(config)
	if err != nil {
		return "", newEngineError(err.Error())
	}
	if len(payload) > MaxPayloadBytes {
		return "", newPayloadTooLarge(len(payload), MaxPayloadBytes)
	}

	if !p.anyWorkerHasCapacity() {
		return "", newOverloaded(overloadRetryAfter)
	}

	idx := atomic.AddUint64(&p.counter, 1) % uint64(len(p.workers))
	w := p.workers[idx]

	reply := make(chan renderResult, 1)
	if !w.trySend(renderJob{configJSON: payload, reply: reply}) {
		return "", newOverloaded(overloadRetryAfter)
	}

	select {
	case res := <-reply:
		return res.html, res.err
	case <-time.After(p.cfg.RenderTimeout):
		return "", newTimeout()
	case <-ctx.Done():
		return "", newTimeout()
	}
}

// Stats is available without I/O.
type Stats struct {
	WorkerCount         int
	WorkersWithCapacity int
}

func (p *Pool) Stats() Stats {
	s := Stats{WorkerCount: len(p.workers)}
	for _, w := range p.workers {
		if w.freeSlots() > 0 {
			s.WorkersWithCapacity++
		}
	}
	return s
}

// HealthStatus is the result of HealthCheck.
type HealthStatus struct {
	Healthy   bool
	LatencyMs int64
	Stats     Stats
	Error     string
}

// HealthCheck dispatches a known-small render with a 5s timeout.
func (p *Pool) HealthCheck(ctx context.Context) HealthStatus {
	hctx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()

	start := timeNow()
	_, err := p.Render(hctx, map[string]any{"health": true})
	latency := timeNow().Sub(start)

	status := HealthStatus{Healthy: err == nil, LatencyMs: latency.Milliseconds(), Stats: p.Stats()}
	if err != nil {
		status.Error = err.Error()
	}
	return status
}

// Shutdown stops every worker, best-effort joining each within its own
// short wall clock.
func (p *Pool) Shutdown() {
	for _, w := range p.workers {
		w.stop()
	}
}

var timeNow = time.Now
