package preflight

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"innario/internal/config"
)

// ServerProbe reports the runtime state recorded by a serve process.
type ServerProbe struct {
	Running bool
	PID     int
}

// ProbeServer reads the PID file and checks whether that process is alive.
// A PID with Running false means the file is stale.
func ProbeServer(cfg *config.Config) ServerProbe {
	if cfg == nil {
		return ServerProbe{}
	}
	data, err := os.ReadFile(cfg.PIDPath())
	if err != nil {
		return ServerProbe{}
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return ServerProbe{}
	}
	if err := unix.Kill(pid, 0); err != nil {
		// EPERM still proves the process exists.
		if errors.Is(err, unix.EPERM) {
			return ServerProbe{Running: true, PID: pid}
		}
		return ServerProbe{PID: pid}
	}
	return ServerProbe{Running: true, PID: pid}
}

// Detail renders a display-friendly summary for status output.
func (p ServerProbe) Detail() string {
	if p.Running {
		return fmt.Sprintf("running (pid %d)", p.PID)
	}
	if p.PID > 0 {
		return fmt.Sprintf("not running (stale pid file reports %d)", p.PID)
	}
	return "not running"
}
