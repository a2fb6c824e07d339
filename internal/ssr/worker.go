package ssr

import (
	"encoding/json"
	"runtime"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
)

// Bundle is the compiled, immutable prerender bundle shared by every
// worker in a pool. A *Bundle is read-only after construction and is
// safe for concurrent use by multiple workers, since each worker compiles
// its own fresh goja.Runtime per request and only shares the parsed
// goja.Program AST.
type Bundle struct {
	path    string
	program *goja.Program
}

type renderJob struct {
	configJSON []byte
	reply      chan renderResult
}

type renderResult struct {
	html string
	err  error
}

// Worker owns a single dedicated OS thread and a bounded request queue.
// The JS engine is not movable between threads, so every render for this
// worker's lifetime runs on the same goroutine, locked to its OS thread.
type Worker struct {
	bundle  *Bundle
	nodeEnv string

	requests chan renderJob
	shutdown chan struct{}
	done     chan struct{}
}

func newWorker(bundle *Bundle, nodeEnv string, queueSize int) *Worker {
	w := &Worker{
		bundle:   bundle,
		nodeEnv:  nodeEnv,
		requests: make(chan renderJob, queueSize),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// freeSlots reports the worker's remaining request-queue capacity,
// consulted by the pool's coarse backpressure pre-check.
func (w *Worker) freeSlots() int {
	return cap(w.requests) - len(w.requests)
}

// trySend enqueues job without blocking; it returns false if the queue is
// currently full, in which case the caller should treat the pool as
// overloaded rather than wait.
func (w *Worker) trySend(job renderJob) bool {
	select {
	case w.requests <- job:
		return true
	default:
		return false
	}
}

// run is the worker's event loop: shutdown takes priority over the next
// request, per the construction/lifecycle contract.
func (w *Worker) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(w.done)

	for {
		select {
		case <-w.shutdown:
			return
		case job, ok := <-w.requests:
			if !ok {
				return
			}
			select {
			case <-w.shutdown:
				return
			default:
			}
			html, err := w.render(job.configJSON)
			job.reply <- renderResult{html: html, err: err}
		}
	}
}

// render executes one request: a fresh goja.Runtime, the fixed polyfill
// script, the double-JSON-encoded config global, then the bundle program,
// pumped through an event loop until the bundle calls op_set_html or the
// loop goes idle with nothing left to run.
func (w *Worker) render(configJSON []byte) (string, error) {
	loop := eventloop.NewEventLoop()

	var (
		html     string
		setupErr error
		once     sync.Once
		done     = make(chan struct{})
	)
	signalDone := func() { once.Do(func() { close(done) }) }

	loop.Run(func(vm *goja.Runtime) {
		vm.Set("op_set_html", func(call goja.FunctionCall) goja.Value {
			html = call.Argument(0).String()
			signalDone()
			return goja.Undefined()
		})

		if _, err := vm.RunString(renderPolyfillScript(w.nodeEnv)); err != nil {
			setupErr = err
			signalDone()
			return
		}

		doubleEncoded, err := json.Marshal(string(configJSON))
		if err != nil {
			setupErr = err
			signalDone()
			return
		}
		if _, err := vm.RunString(configInjectionScript(string(doubleEncoded))); err != nil {
			setupErr = err
			signalDone()
			return
		}

		if _, err := vm.RunProgram(w.bundle.program); err != nil {
			setupErr = err
			signalDone()
			return
		}
	})
	// Run returns once the loop has no jobs left; an idle loop ends the
	// render even if the bundle never called op_set_html.
	signalDone()

	loop.Start()
	defer loop.Stop()

	<-done
	if setupErr != nil {
		return "", newEngineError(setupErr.Error())
	}
	return html, nil
}

// stop signals shutdown and best-effort joins on a short wall clock; if
// the worker does not finish in time it is abandoned. The worker may
// legitimately be mid-render, and the user-visible outcome (the pending
// reply's caller already timed out or the pool is shutting down anyway)
// is the same as a cancellation.
func (w *Worker) stop() {
	close(w.shutdown)
	select {
	case <-w.done:
	case <-time.After(100 * time.Millisecond):
	}
}
