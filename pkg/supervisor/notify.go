package supervisor

import (
	"net"
	"os"

	"github.com/drover-sh/drover/internal/logger"
)

// readyNotification is the sd_notify state sent once all services are
// launched.
const readyNotification = "READY=1"

// notifyReadiness sends a state notification to the process supervisor
// (systemd) over the datagram socket named by NOTIFY_SOCKET.
//
// This is best effort: an unset socket is skipped silently and any failure
// is logged as a warning, never retried and never fatal.
func (s *Server) notifyReadiness(state string) {
	notifySocket := os.Getenv("NOTIFY_SOCKET")
	if notifySocket == "" {
		s.log.Debug("NOTIFY_SOCKET environment variable empty or unset, skipping readiness notification")
		return
	}

	socketAddr := &net.UnixAddr{
		Name: notifySocket,
		Net:  "unixgram",
	}
	conn, err := net.DialUnix(socketAddr.Net, nil, socketAddr)
	if err != nil {
		s.log.Warn("failed to connect to notification socket",
			logger.KeyError, err, logger.KeyPath, notifySocket)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.log.Warn("failed to close notification socket", logger.KeyError, err)
		}
	}()

	if _, err := conn.Write([]byte(state)); err != nil {
		s.log.Warn("failed to write readiness notification", logger.KeyError, err)
	}
}
