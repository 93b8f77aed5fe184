// Package procs finds and terminates processes by name through /proc.
//
// Name matching covers both native executables and interpreter-launched
// scripts: a process matches when its command name, the base name of
// argv[0], or the base name of argv[1] (the script run by an interpreter)
// equals the wanted name.
package procs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/procfs"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"hwgpg/internal/domain"
)

// commLen is the kernel's TASK_COMM_LEN minus the terminating NUL.
const commLen = 15

const (
	pollInterval = 50 * time.Millisecond
	// killWait bounds the wait for a SIGKILLed process to disappear.
	killWait = time.Second
)

// Table looks processes up in a procfs mount.
type Table struct {
	fs   procfs.FS
	self int
	log  logrus.FieldLogger
}

// New opens the procfs mounted at mountPoint (procfs.DefaultMountPoint when
// empty).
func New(mountPoint string, logger logrus.FieldLogger) (*Table, error) {
	if mountPoint == "" {
		mountPoint = procfs.DefaultMountPoint
	}
	fs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, fmt.Errorf("opening procfs: %w", err)
	}
	return &Table{fs: fs, self: os.Getpid(), log: logger.WithField("component", "procs")}, nil
}

// FindByName returns the pids of live processes matching name, excluding
// the calling process.
func (t *Table) FindByName(name string) ([]int, error) {
	all, err := t.fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}
	var pids []int
	for _, p := range all {
		if p.PID == t.self {
			continue
		}
		if matches(p, name) && !isZombie(p) {
			pids = append(pids, p.PID)
		}
	}
	return pids, nil
}

// Terminate sends SIGTERM to pid, waits up to grace for it to go away and
// then sends SIGKILL, waiting a short while for the kill to take effect.
// When pid leads its own process group, as agents started by a session do,
// the whole group is signalled so helpers go down with it. A process that
// is already gone is not an error.
func (t *Table) Terminate(ctx context.Context, pid int, grace time.Duration) error {
	target := t.target(pid)
	entry := t.log.WithFields(logrus.Fields{"pid": pid, "group": target < 0})

	if err := unix.Kill(target, unix.SIGTERM); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return nil
		}
		return fmt.Errorf("terminating process %d: %w", pid, err)
	}
	gone, err := t.waitGone(ctx, pid, grace)
	if err != nil {
		return err
	}
	if gone {
		entry.Debug("process terminated")
		return nil
	}

	entry.Warn("process ignored SIGTERM, killing it")
	if err := unix.Kill(target, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("killing process %d: %w", pid, err)
	}
	gone, err = t.waitGone(ctx, pid, killWait)
	if err != nil {
		return err
	}
	if !gone {
		return fmt.Errorf("process %d still running after SIGKILL", pid)
	}
	return nil
}

// target returns -pid when pid leads a process group other than ours, and
// pid otherwise.
func (t *Table) target(pid int) int {
	p, err := t.fs.Proc(pid)
	if err != nil {
		return pid
	}
	stat, err := p.Stat()
	if err != nil || stat.PGRP != pid || stat.PGRP == unix.Getpgrp() {
		return pid
	}
	return -pid
}

// waitGone polls until pid is gone, timeout elapses or ctx is done.
func (t *Table) waitGone(ctx context.Context, pid int, timeout time.Duration) (bool, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if t.gone(pid) {
			return true, nil
		}
		select {
		case <-ticker.C:
		case <-deadline.C:
			return t.gone(pid), nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

// gone reports whether pid no longer exists or only remains as a zombie
// waiting for its parent.
func (t *Table) gone(pid int) bool {
	p, err := t.fs.Proc(pid)
	if err != nil {
		return true
	}
	return isZombie(p)
}

func isZombie(p procfs.Proc) bool {
	stat, err := p.Stat()
	return err == nil && stat.State == "Z"
}

func matches(p procfs.Proc, name string) bool {
	want := name
	if len(want) > commLen {
		want = want[:commLen]
	}
	if comm, err := p.Comm(); err == nil && comm == want {
		return true
	}
	argv, err := p.CmdLine()
	if err != nil {
		return false
	}
	for i := 0; i < len(argv) && i < 2; i++ {
		if filepath.Base(argv[i]) == name {
			return true
		}
	}
	return false
}

// Compile-time assertion that Table implements domain.ProcessTable.
var _ domain.ProcessTable = (*Table)(nil)
