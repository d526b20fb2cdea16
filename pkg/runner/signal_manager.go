package runner

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalManager derives a context that is cancelled on SIGINT or SIGTERM.
type SignalManager struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSignalManager starts listening for signals on top of parent.
func NewSignalManager(parent context.Context) *SignalManager {
	sm := &SignalManager{}
	sm.ctx, sm.cancel = signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	return sm
}

// Context returns the signal context.
func (sm *SignalManager) Context() context.Context {
	return sm.ctx
}

// Stop releases the signal listener and cancels the context.
func (sm *SignalManager) Stop() {
	sm.cancel()
}
