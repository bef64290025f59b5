package sender

import (
	"context"

	"github.com/fanoutlabs/herald/internal/pkg/instrument"
	"github.com/fanoutlabs/herald/internal/pkg/mail"
)

// Email delivers notifications through the mail provider.
type Email struct {
	mailer mail.Mail
	from   string
	ins    instrument.Instrumentation
}

// NewEmail constructs the email channel adapter.
func NewEmail(mailer mail.Mail, from string, ins instrument.Instrumentation) *Email {
	return &Email{mailer: mailer, from: from, ins: ins}
}

// Send delivers the message to the recipient's email address.
func (e *Email) Send(ctx context.Context, req Request) error {
	ctx, span := e.ins.Tracer("notification.outbound.sender").Start(ctx, "Email.Send")
	defer span.End()

	msg := mail.Message{
		From:     e.from,
		To:       []string{req.Recipient},
		Subject:  req.Subject,
		TextBody: req.Body,
	}
	if req.Metadata.GetBool("html") {
		msg.TextBody = ""
		msg.HTMLBody = req.Body
	}

	return e.mailer.Send(ctx, msg)
}
