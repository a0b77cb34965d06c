package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"

	"maitred/internal/metrics"
	"maitred/internal/models"
	"maitred/internal/service"

	"github.com/rs/zerolog"
)

// adminSession owns the connection after a privileged login hand-off. It is
// single-shot: one day line, one directive line, one reply, then the
// connection closes whatever the outcome.
type adminSession struct {
	conn         net.Conn
	r            *bufio.Reader
	reservations *service.ReservationService
	logger       zerolog.Logger
}

func newAdminSession(conn net.Conn, r *bufio.Reader, reservations *service.ReservationService, logger *zerolog.Logger) *adminSession {
	return &adminSession{
		conn:         conn,
		r:            r,
		reservations: reservations,
		logger:       logger.With().Str("component", "admin-session").Logger(),
	}
}

func (a *adminSession) run() {
	defer a.conn.Close()

	day, err := a.readLine()
	if err != nil {
		a.logger.Info().Err(err).Msg("admin disconnected unexpectedly")
		return
	}
	directive, err := a.readLine()
	if err != nil {
		a.logger.Info().Err(err).Msg("admin disconnected unexpectedly")
		return
	}

	// "Close Late" extends closing hours; any other directive closes early.
	closingLater := directive == models.CmdCloseLate
	outcome := a.reservations.AdminChange(context.Background(), day, closingLater)
	metrics.IncAdminChange(outcome)

	if outcome == models.OutcomeChangeSuccessful {
		_, _ = fmt.Fprintf(a.conn, "%s\n", models.ReplySuccess)
	} else {
		_, _ = fmt.Fprintf(a.conn, "%s\n", models.ReplyFailure)
	}

	a.logger.Info().
		Str("day", day).
		Bool("closing_later", closingLater).
		Str("outcome", outcome).
		Msg("admin schedule change")
}

func (a *adminSession) readLine() (string, error) {
	line, err := a.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
