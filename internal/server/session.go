package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"maitred/internal/ledger"
	"maitred/internal/metrics"
	"maitred/internal/models"
	"maitred/internal/service"

	"github.com/rs/zerolog"
)

// session is the per-connection command dispatcher. It reads one command
// line, then the command's fixed set of argument lines, dispatches, writes a
// single reply line and loops. On a privileged login it hands the live
// connection over to an admin session and stops without closing it.
type session struct {
	conn         net.Conn
	r            *bufio.Reader
	users        *service.UserService
	reservations *service.ReservationService
	adminUser    string
	logger       zerolog.Logger

	handedOff bool
}

func newSession(conn net.Conn, users *service.UserService, reservations *service.ReservationService, adminUser string, logger *zerolog.Logger) *session {
	id := sessionID()
	sessLogger := logger.With().
		Str("component", "session").
		Str("session_id", id).
		Str("remote", conn.RemoteAddr().String()).
		Logger()
	return &session{
		conn:         conn,
		r:            bufio.NewReader(conn),
		users:        users,
		reservations: reservations,
		adminUser:    adminUser,
		logger:       sessLogger,
	}
}

func (s *session) run() {
	defer func() {
		// Ownership of the connection moves to the admin session on
		// hand-off; it must not be touched here afterwards.
		if !s.handedOff {
			_ = s.conn.Close()
		}
	}()

	ctx := context.Background()
	for {
		command, err := s.readLine()
		if err != nil {
			if err != io.EOF {
				s.logger.Info().Err(err).Msg("client disconnected unexpectedly")
			}
			return
		}
		metrics.IncCommand(command)

		switch command {
		case models.CmdLogin:
			if err := s.handleLogin(ctx); err != nil {
				return
			}
			if s.handedOff {
				return
			}
		case models.CmdDeleteAcct:
			_ = s.handleDeleteAccount(ctx)
			// The connection always closes after an account deletion
			// attempt.
			return
		case models.CmdMakeAcct:
			if err := s.handleMakeAccount(ctx); err != nil {
				return
			}
		case models.CmdCancel:
			if err := s.handleCancelReservation(ctx); err != nil {
				return
			}
		case models.CmdListTables:
			if err := s.handleGetTables(ctx); err != nil {
				return
			}
		case models.CmdReserve:
			if err := s.handleMakeReservation(ctx); err != nil {
				return
			}
		default:
			if err := s.reply(models.ReplyFailed); err != nil {
				return
			}
		}
	}
}

func (s *session) handleLogin(ctx context.Context) error {
	username, password, err := s.readCredentials()
	if err != nil {
		return err
	}

	ok, loginErr := s.users.Login(ctx, username, password)
	if loginErr != nil {
		s.logger.Error().Err(loginErr).Msg("login check failed")
		return s.reply(models.ReplyFailed)
	}

	if ok && username == s.adminUser {
		if err := s.reply(models.ReplyAdminHand); err != nil {
			return err
		}
		s.handedOff = true
		admin := newAdminSession(s.conn, s.r, s.reservations, &s.logger)
		go admin.run()
		return nil
	}
	if ok {
		return s.reply(models.ReplySuccess)
	}
	return s.reply(models.ReplyFailed)
}

func (s *session) handleDeleteAccount(ctx context.Context) error {
	username, password, err := s.readCredentials()
	if err != nil {
		return err
	}

	if err := s.users.DeleteAccount(ctx, username, password); err != nil {
		s.logger.Info().Err(err).Str("username", username).Msg("account deletion refused")
		return s.reply(models.ReplyFailed)
	}
	return s.reply(models.ReplySuccess)
}

func (s *session) handleMakeAccount(ctx context.Context) error {
	username, password, err := s.readCredentials()
	if err != nil {
		return err
	}

	if err := s.users.Register(ctx, username, password); err != nil {
		s.logger.Info().Err(err).Str("username", username).Msg("account creation refused")
		return s.reply(models.ReplyFailed)
	}
	return s.reply(models.ReplySuccess)
}

func (s *session) handleCancelReservation(ctx context.Context) error {
	username, err := s.readLine()
	if err != nil {
		return err
	}
	day, err := s.readLine()
	if err != nil {
		return err
	}

	outcome := s.reservations.CancelReservation(ctx, username, day)
	if outcome == models.OutcomeCancellationMade {
		return s.reply(models.ReplySuccess)
	}
	return s.reply(models.ReplyFailed)
}

func (s *session) handleGetTables(ctx context.Context) error {
	day, err := s.readLine()
	if err != nil {
		return err
	}
	timeSlot, err := s.readInt()
	if err != nil {
		return err
	}

	records, listErr := s.reservations.ListAvailable(ctx, day, timeSlot)
	if listErr != nil || len(records) == 0 {
		// An invalid day, a broken ledger and a fully booked slot all
		// collapse to an empty reply line on the wire.
		return s.reply("")
	}

	lines := make([]string, len(records))
	for i, rec := range records {
		lines[i] = ledger.EncodeRecord(rec)
	}
	return s.reply(strings.Join(lines, ";"))
}

func (s *session) handleMakeReservation(ctx context.Context) error {
	username, err := s.readLine()
	if err != nil {
		return err
	}
	day, err := s.readLine()
	if err != nil {
		return err
	}
	tableNumber, err := s.readInt()
	if err != nil {
		return err
	}
	partySize, err := s.readInt()
	if err != nil {
		return err
	}
	timeSlot, err := s.readInt()
	if err != nil {
		return err
	}
	card, err := s.readLine()
	if err != nil {
		return err
	}

	// The client never states special intent explicitly; asking for table 8
	// is the request for the special table.
	wantsSpecial := tableNumber == models.SpecialTableNumber
	outcome := s.reservations.MakeReservation(ctx, username, day, tableNumber, partySize, timeSlot, wantsSpecial, card)
	metrics.IncReservationOutcome(outcome)
	return s.reply(outcome)
}

func (s *session) readCredentials() (string, string, error) {
	username, err := s.readLine()
	if err != nil {
		return "", "", err
	}
	password, err := s.readLine()
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

// readLine reads one protocol line, tolerating CRLF terminators.
func (s *session) readLine() (string, error) {
	line, err := s.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readInt reads a line that must parse as an integer. A non-numeric line is
// a protocol violation and tears the connection down.
func (s *session) readInt() (int, error) {
	line, err := s.readLine()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("non-numeric argument line %q: %w", line, err)
	}
	return n, nil
}

func (s *session) reply(line string) error {
	_, err := fmt.Fprintf(s.conn, "%s\n", line)
	return err
}
