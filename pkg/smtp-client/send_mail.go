package smtp_client

import (
	"errors"
	"log/slog"
	"net/textproto"

	"github.com/knadh/smtppool"
)

// buildEmail assembles the pool message from the server-list defaults and the
// per-send header overrides.
func buildEmail(
	defaults SmtpServerList,
	to []string,
	subject string,
	htmlContent string,
	textContent string,
	overrides *HeaderOverrides,
) smtppool.Email {
	From := defaults.From
	Sender := defaults.Sender
	ReplyTo := defaults.ReplyTo

	if overrides != nil {
		if overrides.From != "" {
			From = overrides.From
		}
		if overrides.Sender != "" {
			Sender = overrides.Sender
		}

		if overrides.NoReplyTo {
			ReplyTo = []string{}
		} else if len(overrides.ReplyTo) > 0 {
			ReplyTo = overrides.ReplyTo
		}
	}

	e := smtppool.Email{
		To:      to,
		From:    From,
		Sender:  Sender,
		ReplyTo: ReplyTo,
		Subject: subject,
		HTML:    []byte(htmlContent),
		Headers: textproto.MIMEHeader{},
	}
	if textContent != "" {
		e.Text = []byte(textContent)
	}
	return e
}

func (sc *SmtpClients) SendMail(
	to []string,
	subject string,
	htmlContent string,
	textContent string,
	overrides *HeaderOverrides,
) error {
	sc.counter += 1
	if len(sc.connectionPool) < 1 {
		sc.connectionPool = initConnectionPool(sc.servers)
		if len(sc.connectionPool) < 1 {
			return errors.New("no servers defined")
		}
	}

	index := sc.counter % len(sc.connectionPool)
	selected := &sc.connectionPool[index]

	e := buildEmail(sc.servers, to, subject, htmlContent, textContent, overrides)
	err := selected.pool.Send(e)

	if err != nil {
		// close and try to reconnect
		slog.Error("error when trying to send email", slog.String("error", err.Error()))

		pool, errReconnect := connectToPool(selected.server)
		if errReconnect != nil {
			slog.Error("cannot reconnect pool", slog.String("error", errReconnect.Error()), slog.String("server", selected.server.Host))
		} else {
			slog.Error("reconnected to pool", slog.String("server", selected.server.Host))
			selected.pool = pool
		}
	}
	return err
}
