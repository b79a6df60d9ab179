package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/vocealarm/internal/constants"
)

var findProcessFunc = ps.FindProcess

const lockfileName = constants.AppName + ".lock"

func lockfilePath(storePath string) string {
	return filepath.Join(filepath.Dir(storePath), lockfileName)
}

// runningDaemonPID reports the pid of a live daemon holding the
// lockfile, or 0 when none is running (missing lockfile, dead pid, or
// a pid recycled by an unrelated process).
func runningDaemonPID(storePath string) int {
	content, err := os.ReadFile(lockfilePath(storePath))
	if err != nil {
		return 0
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return 0
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return 0
	}
	if !strings.HasPrefix(process.Executable(), constants.AppName) {
		return 0
	}
	return pid
}

// acquireDaemonLock writes this process's pid to the lockfile. Fails
// when another live daemon already holds it.
func acquireDaemonLock(storePath string) error {
	if pid := runningDaemonPID(storePath); pid != 0 {
		return fmt.Errorf("another vocealarm daemon is already running (pid %d)", pid)
	}
	pid := strconv.Itoa(os.Getpid())
	return os.WriteFile(lockfilePath(storePath), []byte(pid), 0600)
}

func releaseDaemonLock(storePath string) {
	os.Remove(lockfilePath(storePath))
}
