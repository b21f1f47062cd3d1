package supervisor

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/drover-sh/drover/internal/logger"
)

// writePIDFile retrieves the current process ID and writes it to file.
//
// The process cannot usefully continue if its identity file cannot be
// written, so any failure here terminates the process via the configured
// exit function rather than returning an error.
func (s *Server) writePIDFile() {
	if s.opts.PIDFile == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.opts.PIDFile), 0700); err != nil {
		s.log.Error("failed to verify pid directory", logger.KeyError, err)
		s.exitFn(1)
		return
	}

	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(s.opts.PIDFile, []byte(pid), 0644); err != nil {
		s.log.Error("failed to write pidfile", logger.KeyError, err)
		s.exitFn(1)
		return
	}

	s.log.Info("writing PID file", logger.KeyPath, s.opts.PIDFile, logger.KeyPID, pid)
}
