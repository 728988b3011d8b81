package mailer

import (
	"context"

	"github.com/resumehub/resumehub/pkg/logger"
)

// LogMailer writes email to the application log instead of sending it. Used
// in development when no SendGrid key is configured; the logged body carries
// the magic link so local login still works.
type LogMailer struct{}

func NewLogMailer() *LogMailer { return &LogMailer{} }

func (LogMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	logger.Infof("email (not sent) to=%s subject=%q body=%s", to, subject, htmlBody)
	return nil
}
