package service

import (
	"context"
	"log/slog"

	"go-market-auth/internal/model"
)

// Mailer hands a freshly issued recovery token to the out-of-band
// delivery channel. Delivery itself is an external collaborator; the
// core only defines the seam.
type Mailer interface {
	SendRecoveryToken(ctx context.Context, email string, purpose model.TokenPurpose, token string) error
}

// LogMailer is the development implementation: it records that a
// delivery would happen without logging the token value.
type LogMailer struct{}

func (LogMailer) SendRecoveryToken(_ context.Context, email string, purpose model.TokenPurpose, _ string) error {
	slog.Info("recovery token dispatched", "email", email, "purpose", purpose)
	return nil
}
