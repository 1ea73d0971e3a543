package repository

import (
	"context"

	"consultancy-portal/internal/portal/domain/model"
)

// Notifier delivers an admin notification using the credentials stored in site settings.
type Notifier interface {
	Notify(ctx context.Context, cfg model.EmailSettings, subject, body, replyTo string) error
}
