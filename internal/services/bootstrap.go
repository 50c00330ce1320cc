package services

import (
	"context"
	"errors"
	"strings"

	"sipoma/internal/common"
	"sipoma/internal/logging"
	"sipoma/internal/models"
	"sipoma/internal/repositories"
)

// AdminAccount describes the administrator created on first start.
type AdminAccount struct {
	Email    string
	Password string
	FullName string
}

// BootstrapAdmin creates an approved administrator unless a user with the
// same email already exists. An empty email disables it.
func BootstrapAdmin(ctx context.Context, users repositories.UserRepository, admin AdminAccount, log logging.Logger) error {
	if strings.TrimSpace(admin.Email) == "" {
		return nil
	}
	if err := common.ValidateEmail(admin.Email); err != nil {
		return err
	}
	if err := validatePassword(admin.Password); err != nil {
		return err
	}

	email := common.NormalizeEmail(admin.Email)
	_, err := users.GetByEmail(ctx, email)
	if err == nil {
		log.Debug(ctx, "admin account already present", "email", email)
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	hash, err := HashPassword(admin.Password)
	if err != nil {
		return err
	}

	fullName := strings.TrimSpace(admin.FullName)
	if fullName == "" {
		fullName = "Administrator"
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Status:       models.UserStatusApproved,
		Role:         models.UserRoleAdmin,
	}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			return nil
		}
		return common.NewStoreError("create admin", err)
	}

	log.Info(ctx, "admin account created", "user_id", user.ID.String())
	return nil
}
