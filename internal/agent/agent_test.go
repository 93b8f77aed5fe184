package agent_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hwgpg/internal/agent"
	"hwgpg/internal/log"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// alive reports whether pid exists and is not a zombie.
func alive(pid int) bool {
	stat, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	if err != nil {
		return false
	}
	// The state follows the parenthesised command name.
	rest := string(stat[strings.LastIndexByte(string(stat), ')')+1:])
	return !strings.HasPrefix(strings.TrimSpace(rest), "Z")
}

func TestStart_ExportsGnupgHome(t *testing.T) {
	home := t.TempDir()
	var out syncBuffer
	r := agent.NewRunner(agent.Config{
		Command: []string{"sh", "-c", `echo "home=$GNUPGHOME"`},
		Home:    home,
		Output:  &out,
	}, log.Discard())

	p, err := r.Start(context.Background())
	require.NoError(t, err)

	select {
	case <-p.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("agent did not exit")
	}
	require.NoError(t, p.Err())
	require.Equal(t, "home="+home+"\n", out.String())
	require.NoError(t, p.Stop(context.Background(), time.Second))
}

func TestStop_TerminatesProcessGroup(t *testing.T) {
	childPIDFile := filepath.Join(t.TempDir(), "child.pid")
	r := agent.NewRunner(agent.Config{
		Command: []string{"sh", "-c", "sleep 60 & echo $! > " + childPIDFile + "; wait"},
		Home:    t.TempDir(),
	}, log.Discard())

	p, err := r.Start(context.Background())
	require.NoError(t, err)

	var childPID int
	require.Eventually(t, func() bool {
		b, err := os.ReadFile(childPIDFile)
		if err != nil {
			return false
		}
		childPID, err = strconv.Atoi(strings.TrimSpace(string(b)))
		return err == nil
	}, 10*time.Second, 20*time.Millisecond)

	require.NoError(t, p.Stop(context.Background(), 2*time.Second))

	select {
	case <-p.Done():
	default:
		t.Fatal("Stop returned before the agent was reaped")
	}
	require.Eventually(t, func() bool { return !alive(childPID) }, 5*time.Second, 20*time.Millisecond)
}

func TestStop_EscalatesToKill(t *testing.T) {
	r := agent.NewRunner(agent.Config{
		Command: []string{"sh", "-c", "trap '' TERM; while :; do sleep 0.1; done"},
		Home:    t.TempDir(),
	}, log.Discard())

	p, err := r.Start(context.Background())
	require.NoError(t, err)
	// Let the shell install its trap.
	time.Sleep(200 * time.Millisecond)

	start := time.Now()
	require.NoError(t, p.Stop(context.Background(), 300*time.Millisecond))
	require.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond)
	require.False(t, alive(p.PID()))
}

func TestStop_AlreadyExited_NoError(t *testing.T) {
	r := agent.NewRunner(agent.Config{Command: []string{"true"}, Home: t.TempDir()}, log.Discard())

	p, err := r.Start(context.Background())
	require.NoError(t, err)
	<-p.Done()

	require.NoError(t, p.Stop(context.Background(), time.Second))
	require.NoError(t, p.Stop(context.Background(), time.Second))
}

func TestStart_MissingBinary(t *testing.T) {
	r := agent.NewRunner(agent.Config{Command: []string{"/nonexistent/trezor-gpg", "agent"}}, log.Discard())

	p, err := r.Start(context.Background())
	require.Error(t, err)
	require.Nil(t, p)
}
