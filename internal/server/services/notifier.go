package services

import (
	"context"

	"github.com/dmitrijs2005/docshare/internal/logging"
)

// Notifier delivers account emails.
type Notifier interface {
	SendVerification(ctx context.Context, email, verifyURL string) error
}

// LogNotifier stands in for a mail gateway: it records that a
// verification mail was due. The URL carries a bearer token and is only
// written at debug level.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(log logging.Logger) *LogNotifier {
	return &LogNotifier{log: log.With("module", "notifier")}
}

func (n *LogNotifier) SendVerification(ctx context.Context, email, verifyURL string) error {
	n.log.Info(ctx, "verification mail queued", "email", email)
	n.log.Debug(ctx, "verification link", "url", verifyURL)
	return nil
}
