// Package lifecycle provides the asynchronous once-activate/once-shutdown
// base embedded by every long-lived component in this module
// (transport.Connection, callback.Server, diagnostics.Server):
// a single place to reason about "has this started, has it finished, who is
// waiting on it" instead of each component inventing its own bookkeeping.
package lifecycle

import (
	"context"
	"sync"

	"github.com/sammck-go/rgate/logging"
)

// OnceActivateHandler runs exactly once, with shutdown paused, to bring an
// object to a usable state. Returning a non-nil error aborts activation and
// immediately begins shutdown with that error.
type OnceActivateHandler func() error

// OnceShutdownHandler is implemented by the object a Helper manages. Shutdown
// is called exactly once, in its own goroutine, and is never invoked while
// shutdown is paused.
type OnceShutdownHandler interface {
	HandleOnceShutdown(completionError error) error
}

// AsyncShutdowner is implemented by objects that support asynchronous
// shutdown, including Helper itself.
type AsyncShutdowner interface {
	StartShutdown(completionErr error)
	ShutdownDoneChan() <-chan struct{}
	IsDoneShutdown() bool
	WaitShutdown() error
}

// Helper manages clean asynchronous shutdown of an object implementing
// OnceShutdownHandler, plus an embedded Logger so callers get leveled,
// prefixed logging for free.
type Helper struct {
	logging.Logger

	// Lock is a general-purpose mutex available to the embedding type.
	Lock sync.Mutex

	handler OnceShutdownHandler

	pauseCount    int
	activated     bool
	scheduled     bool
	started       bool
	done          bool
	shutdownErr   error

	startedChan     chan struct{}
	handlerDoneChan chan struct{}
	doneChan        chan struct{}

	wg sync.WaitGroup
}

// Init initializes a Helper in place.
func (h *Helper) Init(logger logging.Logger, handler OnceShutdownHandler) {
	h.Logger = logger
	h.handler = handler
	h.startedChan = make(chan struct{})
	h.handlerDoneChan = make(chan struct{})
	h.doneChan = make(chan struct{})
}

func (h *Helper) asyncRunShutdown() {
	h.DLogf("shutdown: started")
	close(h.startedChan)
	go func() {
		h.shutdownErr = h.handler.HandleOnceShutdown(h.shutdownErr)
		h.DLogf("shutdown: handler done")
		close(h.handlerDoneChan)
		h.wg.Wait()
		h.Lock.Lock()
		h.done = true
		h.Lock.Unlock()
		h.DLogf("shutdown: done")
		close(h.doneChan)
	}()
}

// PauseShutdown increments the shutdown pause count, delaying the actual
// start of shutdown. It errors if shutdown has already started. Every
// successful call must be paired with ResumeShutdown.
func (h *Helper) PauseShutdown() error {
	h.Lock.Lock()
	defer h.Lock.Unlock()
	if h.started {
		return h.Errorf("shutdown already started; cannot pause")
	}
	h.pauseCount++
	return nil
}

// ResumeShutdown decrements the pause count and, if it reaches zero and
// shutdown has been scheduled, begins it.
func (h *Helper) ResumeShutdown() {
	h.Lock.Lock()
	if h.pauseCount < 1 {
		h.Lock.Unlock()
		h.Panic("ResumeShutdown before PauseShutdown")
		return
	}
	h.pauseCount--
	runNow := h.pauseCount == 0 && h.scheduled && !h.started
	if runNow {
		h.started = true
	}
	h.Lock.Unlock()
	if runNow {
		h.asyncRunShutdown()
	}
}

// Activate marks the helper activated. It is a no-op if already activated
// and fails if shutdown has already started.
func (h *Helper) Activate() error {
	h.Lock.Lock()
	defer h.Lock.Unlock()
	if !h.activated {
		if h.started {
			return h.Errorf("cannot activate; shutdown already initiated")
		}
		h.activated = true
	}
	return nil
}

// IsActivated reports whether Activate has succeeded.
func (h *Helper) IsActivated() bool {
	h.Lock.Lock()
	defer h.Lock.Unlock()
	return h.activated
}

// DoOnceActivate activates the object via onceActivate, pausing shutdown for
// the duration so a concurrent StartShutdown cannot race the handler. If
// onceActivate or Activate fails, shutdown begins with that error; waitOnFail
// additionally blocks until shutdown completes before returning the error.
func (h *Helper) DoOnceActivate(onceActivate OnceActivateHandler, waitOnFail bool) error {
	h.Lock.Lock()
	if h.activated {
		h.Lock.Unlock()
		return nil
	}
	if h.started {
		h.Lock.Unlock()
		var err error
		if waitOnFail {
			err = h.WaitShutdown()
		}
		if err == nil {
			err = h.Errorf("shutdown already started; cannot activate")
		}
		return err
	}
	h.pauseCount++
	h.Lock.Unlock()

	err := onceActivate()
	if err == nil {
		err = h.Activate()
	}
	if err != nil {
		h.StartShutdown(err)
	}
	h.ResumeShutdown()
	if err != nil && waitOnFail {
		h.WaitShutdown()
	}
	return err
}

// StartShutdown schedules asynchronous shutdown, taking effect once the
// pause count reaches zero. Calling it more than once has no further effect;
// completionErr from the first call wins.
func (h *Helper) StartShutdown(completionErr error) {
	var runNow bool
	h.Lock.Lock()
	if !h.scheduled {
		if h.started {
			h.Lock.Unlock()
			h.Panic("shutdown started before scheduled")
			return
		}
		h.shutdownErr = completionErr
		h.scheduled = true
		runNow = h.pauseCount == 0
		h.started = runNow
	}
	h.Lock.Unlock()
	if runNow {
		h.asyncRunShutdown()
	}
}

// IsScheduledShutdown reports whether StartShutdown has been called.
func (h *Helper) IsScheduledShutdown() bool {
	h.Lock.Lock()
	defer h.Lock.Unlock()
	return h.scheduled
}

// IsStartedShutdown reports whether shutdown has begun running.
func (h *Helper) IsStartedShutdown() bool {
	h.Lock.Lock()
	defer h.Lock.Unlock()
	return h.started
}

// IsDoneShutdown reports whether shutdown has completed.
func (h *Helper) IsDoneShutdown() bool {
	h.Lock.Lock()
	defer h.Lock.Unlock()
	return h.done
}

// ShutdownDoneChan returns a channel closed once shutdown is complete.
func (h *Helper) ShutdownDoneChan() <-chan struct{} {
	return h.doneChan
}

// ShutdownStartedChan returns a channel closed once shutdown has begun.
func (h *Helper) ShutdownStartedChan() <-chan struct{} {
	return h.startedChan
}

// WaitShutdown blocks until shutdown completes and returns its final status.
// It does not itself initiate shutdown.
func (h *Helper) WaitShutdown() error {
	<-h.doneChan
	return h.shutdownErr
}

// Shutdown initiates shutdown if not already started, waits for completion,
// and returns the final status.
func (h *Helper) Shutdown(completionErr error) error {
	h.StartShutdown(completionErr)
	return h.WaitShutdown()
}

// Close is the default io.Closer: shut down with a nil advisory status.
func (h *Helper) Close() error {
	h.DLogf("Close()")
	return h.Shutdown(nil)
}

// ShutdownOnContext begins shutting down this helper with ctx.Err() if ctx is
// done before shutdown otherwise starts.
func (h *Helper) ShutdownOnContext(ctx context.Context) {
	go func() {
		select {
		case <-h.startedChan:
		case <-ctx.Done():
			h.StartShutdown(ctx.Err())
		}
	}()
}

// AddShutdownChild registers child to be shut down with this helper's
// completion error once HandleOnceShutdown returns, and waited on before this
// helper's own shutdown is considered complete.
func (h *Helper) AddShutdownChild(child AsyncShutdowner) {
	h.wg.Add(1)
	go func() {
		select {
		case <-child.ShutdownDoneChan():
		case <-h.handlerDoneChan:
			child.StartShutdown(h.shutdownErr)
			child.WaitShutdown()
		}
		h.wg.Done()
	}()
}

// AddShutdownChildChan registers an arbitrary channel to be waited on before
// this helper's shutdown is considered complete. The caller is responsible
// for closing it.
func (h *Helper) AddShutdownChildChan(childDone <-chan struct{}) {
	h.wg.Add(1)
	go func() {
		<-childDone
		h.wg.Done()
	}()
}
