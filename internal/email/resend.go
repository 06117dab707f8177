package email

import (
	"context"

	"github.com/resend/resend-go/v2"

	"github.com/seamark/curio/internal/domain"
)

// ResendSender implements Sender using the Resend API.
type ResendSender struct {
	client *resend.Client
}

func NewResendSender(apiKey string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey)}
}

func (s *ResendSender) Send(ctx context.Context, msg *Message) (string, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		Text:    msg.Text,
	})
	if err != nil {
		return "", domain.Unavailable(err, "email.send", "failed to send email")
	}
	return sent.Id, nil
}
