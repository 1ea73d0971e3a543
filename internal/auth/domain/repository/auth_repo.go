package repository

import (
	"context"

	"consultancy-portal/internal/auth/domain/model"
)

// AdminRepository stores administrator accounts.
type AdminRepository interface {
	GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error)
	UpsertAdmin(ctx context.Context, admin *model.Admin) error
}
