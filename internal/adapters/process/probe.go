package process

import (
	"errors"
	"os"
	"syscall"

	"github.com/bnema/taskguard/internal/ports"
)

type Probe struct{}

var _ ports.ProcessProbe = Probe{}

func (Probe) Self() int {
	return os.Getpid()
}

// Alive sends signal 0 to pid. EPERM means the process exists but belongs
// to someone else, which still counts as alive.
func (Probe) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}

	return errors.Is(err, syscall.EPERM)
}
