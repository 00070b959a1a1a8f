package pidfile

// NewForTest builds a manager with a fixed PID and liveness probe
func NewForTest(path string, pid int, alive func(int) bool) *PIDFile {
	return &PIDFile{path: path, pid: pid, alive: alive}
}
