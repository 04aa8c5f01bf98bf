package agent

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalController cancels a context on the first Ctrl+C / SIGTERM.
type SignalController struct {
	ch     chan os.Signal
	cancel context.CancelFunc
	done   chan struct{}
	hit    chan struct{}
}

func NewSignalController(parent context.Context) (context.Context, *SignalController) {
	ctx, cancel := context.WithCancel(parent)
	s := &SignalController{
		ch:     make(chan os.Signal, 1),
		cancel: cancel,
		done:   make(chan struct{}),
		hit:    make(chan struct{}),
	}
	signal.Notify(s.ch, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-s.ch:
			close(s.hit)
			cancel()
		case <-s.done:
		}
	}()
	return ctx, s
}

// Interrupted reports whether a signal arrived.
func (s *SignalController) Interrupted() bool {
	select {
	case <-s.hit:
		return true
	default:
		return false
	}
}

func (s *SignalController) Close() {
	signal.Stop(s.ch)
	close(s.done)
	s.cancel()
}
