package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"consultancy-portal/internal/auth/domain/model"
	"consultancy-portal/internal/auth/domain/repository"
	"consultancy-portal/internal/auth/usecase"

	"github.com/google/uuid"
)

var _ repository.AdminRepository = (*AdminRepository)(nil)

// AdminRepository keeps admins in memory for development and tests.
type AdminRepository struct {
	mu     sync.RWMutex
	admins map[string]model.Admin
}

func NewAdminRepository() *AdminRepository {
	return &AdminRepository{admins: make(map[string]model.Admin)}
}

func (r *AdminRepository) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	admin, ok := r.admins[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, usecase.ErrAdminNotFound
	}
	return &admin, nil
}

func (r *AdminRepository) UpsertAdmin(ctx context.Context, admin *model.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	if existing, ok := r.admins[admin.Email]; ok {
		admin.ID = existing.ID
		admin.CreatedAt = existing.CreatedAt
	} else {
		admin.ID = uuid.NewString()
		admin.CreatedAt = now
	}
	admin.UpdatedAt = now
	r.admins[admin.Email] = *admin
	return nil
}
