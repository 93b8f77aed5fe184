package assuan

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"hwgpg/internal/domain"
)

// DefaultTimeout bounds a single probe when ctx carries no deadline.
const DefaultTimeout = 2 * time.Second

// maxLine is the Assuan line length limit including the trailing newline.
const maxLine = 1000

// ErrServer is returned when the server answers with ERR.
var ErrServer = errors.New("assuan server error")

// Prober checks agent sockets for readiness.
type Prober struct {
	Timeout time.Duration
}

// NewProber returns a Prober using DefaultTimeout.
func NewProber() *Prober { return &Prober{Timeout: DefaultTimeout} }

// Probe connects to socketPath and completes a greeting and RESET round trip.
func (p *Prober) Probe(ctx context.Context, socketPath string) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", socketPath, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	// Unblock reads if ctx is canceled before the deadline.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	r := bufio.NewReaderSize(conn, maxLine)
	if err := readResponse(r); err != nil {
		return fmt.Errorf("reading greeting: %w", err)
	}
	if _, err := conn.Write([]byte("RESET\n")); err != nil {
		return fmt.Errorf("sending RESET: %w", err)
	}
	if err := readResponse(r); err != nil {
		return fmt.Errorf("reading RESET reply: %w", err)
	}
	_, _ = conn.Write([]byte("BYE\n"))
	return nil
}

// readResponse consumes lines up to and including the final OK or ERR.
func readResponse(r *bufio.Reader) error {
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "OK" || strings.HasPrefix(line, "OK "):
			return nil
		case line == "ERR" || strings.HasPrefix(line, "ERR "):
			return fmt.Errorf("%w: %s", ErrServer, strings.TrimSpace(strings.TrimPrefix(line, "ERR")))
		case strings.HasPrefix(line, "#"),
			strings.HasPrefix(line, "S "),
			strings.HasPrefix(line, "D "):
			continue
		default:
			return fmt.Errorf("unexpected line %q", line)
		}
	}
}

// Compile-time assertion that Prober implements domain.ReadinessProbe.
var _ domain.ReadinessProbe = (*Prober)(nil)
