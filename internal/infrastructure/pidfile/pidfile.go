package pidfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// RunningError reports that another daemon holds the PID file
type RunningError struct {
	PID  int
	Path string
}

func (e *RunningError) Error() string {
	return fmt.Sprintf("colony daemon is already running (PID %d, %s)", e.PID, e.Path)
}

// PIDFile keeps a single colony daemon per PID file path
type PIDFile struct {
	path  string
	pid   int
	alive func(pid int) bool
}

// New creates a PID file manager for the current process
func New(path string) *PIDFile {
	return &PIDFile{path: path, pid: os.Getpid(), alive: isProcessRunning}
}

// Path returns the managed file
func (p *PIDFile) Path() string { return p.path }

// Acquire writes the current PID. A file left by a dead process or holding
// garbage is replaced; a live owner yields *RunningError.
func (p *PIDFile) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(p.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n", p.pid)
			cerr := f.Close()
			if werr != nil || cerr != nil {
				_ = os.Remove(p.path)
				return fmt.Errorf("failed to write PID file: %w", errors.Join(werr, cerr))
			}
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("failed to create PID file: %w", err)
		}

		owner, rerr := p.Read()
		if rerr == nil && owner != p.pid && p.alive(owner) {
			return &RunningError{PID: owner, Path: p.path}
		}
		// stale or unreadable: clear it and retry the exclusive create once
		if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale PID file: %w", err)
		}
	}
	return fmt.Errorf("failed to acquire PID file %s", p.path)
}

// Read returns the PID stored in the file
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("malformed PID file %s: %w", p.path, err)
	}
	return pid, nil
}

// Release removes the file if this process still owns it
func (p *PIDFile) Release() error {
	owner, err := p.Read()
	if os.IsNotExist(err) {
		return nil
	}
	if err == nil && owner != p.pid {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// isProcessRunning probes pid with signal 0
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	switch {
	case err == nil:
		return true
	case errors.Is(err, syscall.EPERM):
		// exists, owned by someone else
		return true
	default:
		return false
	}
}
