package delivery

import (
	"context"
	"fmt"

	sc "github.com/soshogle/nexrel-crm-sub019/pkg/smtp-client"
)

// EmailAdapter delivers through the SMTP connection pool.
type EmailAdapter struct {
	Clients *sc.SmtpClients
}

func NewEmailAdapter(clients *sc.SmtpClients) *EmailAdapter {
	return &EmailAdapter{Clients: clients}
}

func (a *EmailAdapter) Send(ctx context.Context, req SendRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	from := req.FromEmail
	if req.FromName != "" {
		from = fmt.Sprintf("%s <%s>", req.FromName, req.FromEmail)
	}
	overrides := &sc.HeaderOverrides{
		From: from,
	}
	if req.ReplyTo != "" {
		overrides.ReplyTo = []string{req.ReplyTo}
	}

	return a.Clients.SendMail(
		[]string{req.To},
		req.Subject,
		req.HTML,
		req.Text,
		overrides,
	)
}
