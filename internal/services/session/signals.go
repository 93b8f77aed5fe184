package session

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// SignalSource delivers the signals a session reacts to.
type SignalSource interface {
	Notify(c chan<- os.Signal)
	Stop(c chan<- os.Signal)
}

// OSSignals relays SIGINT, SIGTERM and SIGHUP sent to this process.
type OSSignals struct{}

// Notify starts relaying signals to c.
func (OSSignals) Notify(c chan<- os.Signal) {
	signal.Notify(c, unix.SIGINT, unix.SIGTERM, unix.SIGHUP)
}

// Stop stops relaying signals to c and restores default handling.
func (OSSignals) Stop(c chan<- os.Signal) { signal.Stop(c) }

// SignalError reports that a session was interrupted by a signal.
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string { return fmt.Sprintf("interrupted by %v", e.Signal) }

// ExitStatus returns 128 plus the signal number, like a shell does.
func (e *SignalError) ExitStatus() int {
	if s, ok := e.Signal.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}
