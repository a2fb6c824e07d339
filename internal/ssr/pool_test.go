package ssr

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{WorkerCount: 2, MaxPending: 4, RenderTimeout: 2 * time.Second, NodeEnv: "test"}
}

func TestNewPoolRejectsMissingBundle(t *testing.T) {
	_, err := NewPool(testConfig(), "testdata/does_not_exist.js", nil)
	require.Error(t, err)
	var ssrErr *Error
	require.ErrorAs(t, err, &ssrErr)
	assert.Equal(t, KindBundleError, ssrErr.Kind)
}

func TestNewPoolRejectsNonJSExtension(t *testing.T) {
	_, err := NewPool(testConfig(), "testdata/echo_bundle.txt", nil)
	require.Error(t, err)
	var ssrErr *Error
	require.ErrorAs(t, err, &ssrErr)
	assert.Equal(t, KindBundleError, ssrErr.Kind)
}

func TestRenderEchoesInjectedConfig(t *testing.T) {
	pool, err := NewPool(testConfig(), "testdata/echo_bundle.js", nil)
	require.NoError(t, err)
	defer pool.Shutdown()

	html, err := pool.Render(context.Background(), map[string]any{"greeting": "hi"})
	require.NoError(t, err)
	assert.Contains(t, html, `"greeting":"hi"`)
}

// TestPayloadTooLargeRejectsWithoutInvokingWorker is E5.
func TestPayloadTooLargeRejectsWithoutInvokingWorker(t *testing.T) {
	pool, err := NewPool(testConfig(), "testdata/echo_bundle.js", nil)
	require.NoError(t, err)
	defer pool.Shutdown()

	before := pool.Stats().WorkersWithCapacity

	big := strings.Repeat("a", 6*1024*1024)
	_, err = pool.Render(context.Background(), map[string]string{"x": big})
	require.Error(t, err)
	var ssrErr *Error
	require.ErrorAs(t, err, &ssrErr)
	assert.Equal(t, KindPayloadTooLarge, ssrErr.Kind)
	assert.GreaterOrEqual(t, ssrErr.Size, 6*1024*1024)
	assert.Equal(t, MaxPayloadBytes, ssrErr.Max)

	assert.Equal(t, before, pool.Stats().WorkersWithCapacity, "no worker slot was consumed")
}

// TestOverloadBackpressure is E4: worker_count=1, max_pending=1. A is
// in-flight (occupies the worker), B fills the one queue slot, C finds no
// capacity anywhere and is rejected immediately.
func TestOverloadBackpressure(t *testing.T) {
	cfg := Config{WorkerCount: 1, MaxPending: 1, RenderTimeout: 5 * time.Second, NodeEnv: "test"}
	pool, err := NewPool(cfg, "testdata/slow_bundle.js", nil)
	require.NoError(t, err)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = pool.Render(context.Background(), map[string]any{"who": "A"})
	}()

	// Give A time to be dequeued and start executing on the worker.
	time.Sleep(20 * time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := pool.Render(context.Background(), map[string]any{"who": "B"})
		assert.NoError(t, err, "B should queue behind A and eventually succeed")
	}()

	time.Sleep(10 * time.Millisecond)

	_, err = pool.Render(context.Background(), map[string]any{"who": "C"})
	require.Error(t, err)
	var ssrErr *Error
	require.ErrorAs(t, err, &ssrErr)
	assert.Equal(t, KindOverloaded, ssrErr.Kind)
	assert.Equal(t, 5*time.Second, ssrErr.RetryAfter)

	wg.Wait()
}

func TestEngineErrorIsSanitized(t *testing.T) {
	pool, err := NewPool(testConfig(), "testdata/broken_bundle.js", nil)
	require.NoError(t, err)
	defer pool.Shutdown()

	_, err = pool.Render(context.Background(), map[string]any{})
	require.Error(t, err)
	var ssrErr *Error
	require.ErrorAs(t, err, &ssrErr)
	assert.Equal(t, KindEngineError, ssrErr.Kind)
	assert.Equal(t, "SSR engine error", ssrErr.Message, "the path-containing original message must be redacted")
}

func TestHealthCheckReportsStats(t *testing.T) {
	pool, err := NewPool(testConfig(), "testdata/echo_bundle.js", nil)
	require.NoError(t, err)
	defer pool.Shutdown()

	status := pool.HealthCheck(context.Background())
	assert.True(t, status.Healthy)
	assert.Equal(t, 2, status.Stats.WorkerCount)
}

func TestManagerSwapKeepsOldPoolUsableUntilInFlightCompletes(t *testing.T) {
	poolA, err := NewPool(testConfig(), "testdata/echo_bundle.js", nil)
	require.NoError(t, err)
	mgr := NewManager(poolA)

	poolB, err := NewPool(testConfig(), "testdata/echo_bundle.js", nil)
	require.NoError(t, err)

	mgr.Swap(poolB)
	defer mgr.Shutdown()

	html, err := mgr.Render(context.Background(), map[string]any{"after": "swap"})
	require.NoError(t, err)
	assert.Contains(t, html, "swap")
}
