package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"kbr-silks-backend/internal/models"
)

type RoleService struct {
	store    RoleStore
	settings settings
}

func NewRoleService(store RoleStore, opts ...Option) *RoleService {
	return &RoleService{store: store, settings: newSettings(opts)}
}

func (s *RoleService) Role(ctx context.Context, userID string) (models.Role, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return models.RoleGuest, nil
	}
	return call(ctx, s.settings, func(ctx context.Context) (models.Role, error) {
		return s.store.GetUserRole(ctx, userID)
	})
}

func (s *RoleService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	role, err := s.Role(ctx, userID)
	if err != nil {
		return false, err
	}
	return role == models.RoleAdmin, nil
}

func (s *RoleService) Assign(ctx context.Context, userID string, role models.Role) error {
	userID = strings.TrimSpace(userID)
	errs := fieldErrors{}
	if _, err := uuid.Parse(userID); err != nil {
		errs["user_id"] = "User id must be a UUID"
	}
	if !role.Valid() {
		errs["role"] = "Role must be admin, user or guest"
	}
	if err := errs.err(); err != nil {
		return err
	}

	err := run(ctx, s.settings, func(ctx context.Context) error {
		return s.store.AssignRole(ctx, userID, role)
	})
	if err != nil {
		return err
	}

	s.settings.logger.InfoContext(ctx, "role assigned", "user_id", userID, "role", role)
	return nil
}
