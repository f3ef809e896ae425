package supabase

import (
	"context"
	"fmt"

	"github.com/supabase-community/supabase-go"
	"kbr-silks-backend/internal/config"
	"kbr-silks-backend/internal/models"
)

const userRolesTable = "user_roles"

type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

type roleRow struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
}

// GetUserRole looks the user up in user_roles. Users without a row are guests.
func (c *Client) GetUserRole(ctx context.Context, userID string) (models.Role, error) {
	if err := ctx.Err(); err != nil {
		return models.RoleGuest, err
	}

	var rows []roleRow
	_, err := c.Supabase.From(userRolesTable).
		Select("user_id,role", "", false).
		Eq("user_id", userID).
		ExecuteTo(&rows)
	if err != nil {
		return models.RoleGuest, fmt.Errorf("failed to get user role: %w", err)
	}
	if len(rows) == 0 {
		return models.RoleGuest, nil
	}

	return rows[0].Role, nil
}

func (c *Client) AssignRole(ctx context.Context, userID string, role models.Role) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var rows []roleRow
	_, err := c.Supabase.From(userRolesTable).
		Upsert(roleRow{UserID: userID, Role: role}, "user_id", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	return nil
}
