package cli

import (
	"os"
	"path/filepath"
	"testing"

	ps "github.com/mitchellh/go-ps"
)

type fakeProcess struct {
	pid        int
	executable string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 0 }
func (p fakeProcess) Executable() string { return p.executable }

func stubFindProcess(t *testing.T, procs map[int]ps.Process) {
	t.Helper()
	orig := findProcessFunc
	findProcessFunc = func(pid int) (ps.Process, error) {
		return procs[pid], nil
	}
	t.Cleanup(func() { findProcessFunc = orig })
}

func TestRunningDaemonPID(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "vocealarm.json")

	if pid := runningDaemonPID(storePath); pid != 0 {
		t.Errorf("no lockfile should mean no daemon, got pid %d", pid)
	}

	if err := os.WriteFile(lockfilePath(storePath), []byte("4242"), 0600); err != nil {
		t.Fatal(err)
	}

	// Live daemon process
	stubFindProcess(t, map[int]ps.Process{4242: fakeProcess{pid: 4242, executable: "vocealarm"}})
	if pid := runningDaemonPID(storePath); pid != 4242 {
		t.Errorf("expected pid 4242, got %d", pid)
	}

	// Pid recycled by an unrelated process
	stubFindProcess(t, map[int]ps.Process{4242: fakeProcess{pid: 4242, executable: "firefox"}})
	if pid := runningDaemonPID(storePath); pid != 0 {
		t.Errorf("recycled pid should not count as a daemon, got %d", pid)
	}

	// Dead pid
	stubFindProcess(t, map[int]ps.Process{})
	if pid := runningDaemonPID(storePath); pid != 0 {
		t.Errorf("dead pid should not count as a daemon, got %d", pid)
	}
}

func TestAcquireDaemonLock(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "vocealarm.json")
	stubFindProcess(t, map[int]ps.Process{})

	if err := acquireDaemonLock(storePath); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if _, err := os.Stat(lockfilePath(storePath)); err != nil {
		t.Errorf("lockfile should exist: %v", err)
	}

	// A stale lockfile from a dead process is replaced, not an error
	if err := acquireDaemonLock(storePath); err != nil {
		t.Errorf("stale lock should be reclaimable: %v", err)
	}

	releaseDaemonLock(storePath)
	if _, err := os.Stat(lockfilePath(storePath)); !os.IsNotExist(err) {
		t.Error("lockfile should be removed after release")
	}

	// Held by a live daemon
	if err := os.WriteFile(lockfilePath(storePath), []byte("99"), 0600); err != nil {
		t.Fatal(err)
	}
	stubFindProcess(t, map[int]ps.Process{99: fakeProcess{pid: 99, executable: "vocealarm"}})
	if err := acquireDaemonLock(storePath); err == nil {
		t.Error("expected error when a live daemon holds the lock")
	}
}
