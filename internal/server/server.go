package server

import (
	"net"

	"maitred/internal/metrics"
	"maitred/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Server accepts client connections and runs one dispatcher session per
// connection. There is no connection limit and no admission control; the
// accept loop ends only when Accept fails, usually because the listener was
// closed.
type Server struct {
	users        *service.UserService
	reservations *service.ReservationService
	adminUser    string
	logger       *zerolog.Logger
}

func New(users *service.UserService, reservations *service.ReservationService, adminUser string, logger *zerolog.Logger) *Server {
	return &Server{
		users:        users,
		reservations: reservations,
		adminUser:    adminUser,
		logger:       logger,
	}
}

// Serve runs the accept loop on an existing listener until Accept returns an
// error. Closing the listener is the only way to stop it.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info().Str("addr", lis.Addr().String()).Msg("reservation server listening")
	for {
		conn, err := lis.Accept()
		if err != nil {
			s.logger.Info().Err(err).Msg("accept loop terminated")
			return err
		}
		metrics.IncConnection()
		sess := newSession(conn, s.users, s.reservations, s.adminUser, s.logger)
		go sess.run()
	}
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

func sessionID() string {
	return uuid.NewString()
}
