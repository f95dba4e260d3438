package sighandler

import (
	"context"
	"os"
	"os/signal"
)

// Handler relays OS signals to SignalReceivedFunc.
type Handler struct {
	EndFunc            func()               // Called once when Loop() exits
	SignalReceivedFunc func(os.Signal) bool // Called each time when signal is received
	sigCh              chan os.Signal
}

func New(signals ...os.Signal) *Handler {
	sigCh := make(chan os.Signal, len(signals))
	signal.Notify(sigCh, signals...)
	return &Handler{sigCh: sigCh}
}

func (s *Handler) runEndFunc() {
	if f := s.EndFunc; f != nil {
		f()
	}
}

func (s *Handler) runSignalReceivedFunc(sig os.Signal) bool {
	if f := s.SignalReceivedFunc; f != nil {
		return f(sig)
	}
	return false
}

// Loop loops until ctx is done, or until a signal is received and
// SignalReceivedFunc returns false. Signals stop being relayed once
// Loop returns.
func (s *Handler) Loop(ctx context.Context) {
	defer s.runEndFunc()
	defer signal.Stop(s.sigCh)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-s.sigCh:
			if !s.runSignalReceivedFunc(sig) {
				return
			}
		}
	}
}
