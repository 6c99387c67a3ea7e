package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/internal/docstore"
)

// AdminUserRepository handles storage operations for AdminUser.
type AdminUserRepository struct {
	store docstore.Store
}

func NewAdminUserRepository(store docstore.Store) *AdminUserRepository {
	return &AdminUserRepository{store: store}
}

// NormalizeEmail is the form emails are stored and compared in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByEmail looks up an admin by email address.
func (r *AdminUserRepository) FindByEmail(ctx context.Context, email string) (models.AdminUser, error) {
	want := NormalizeEmail(email)
	users, err := r.store.Admins().List(ctx)
	if err != nil {
		return models.AdminUser{}, err
	}
	for _, u := range users {
		if NormalizeEmail(u.Email) == want {
			return u, nil
		}
	}
	return models.AdminUser{}, fmt.Errorf("admin %q: %w", want, docstore.ErrNotFound)
}

// FindByID looks up an admin by id.
func (r *AdminUserRepository) FindByID(ctx context.Context, id string) (models.AdminUser, error) {
	return r.store.Admins().Get(ctx, id)
}

// Create persists a new admin. The email must not be taken.
func (r *AdminUserRepository) Create(ctx context.Context, user *models.AdminUser) error {
	user.Email = NormalizeEmail(user.Email)
	_, err := r.FindByEmail(ctx, user.Email)
	if err == nil {
		return fmt.Errorf("admin %q: %w", user.Email, docstore.ErrConflict)
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return err
	}
	return r.store.Admins().Create(ctx, user)
}

// Update persists changes to an existing admin.
func (r *AdminUserRepository) Update(ctx context.Context, user *models.AdminUser) error {
	user.Email = NormalizeEmail(user.Email)
	return r.store.Admins().Update(ctx, user.ID, user)
}

// All returns every admin.
func (r *AdminUserRepository) All(ctx context.Context) ([]models.AdminUser, error) {
	return r.store.Admins().List(ctx)
}
