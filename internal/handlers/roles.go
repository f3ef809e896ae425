package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"kbr-silks-backend/internal/middleware"
	"kbr-silks-backend/internal/models"
)

type RoleManager interface {
	Role(ctx context.Context, userID string) (models.Role, error)
	Assign(ctx context.Context, userID string, role models.Role) error
}

type RolesHandler struct {
	roles RoleManager
}

func NewRolesHandler(roles RoleManager) *RolesHandler {
	return &RolesHandler{roles: roles}
}

// MyRole godoc
// @Summary     Caller's role
// @Tags        roles
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.RoleResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /me/role [get]
func (h *RolesHandler) MyRole(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	role, err := h.roles.Role(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.RoleResponse{UserID: userID, Role: role})
}

// AssignRole godoc
// @Summary     Assign a role
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       user_id path string                   true "Supabase user ID"
// @Param       request body models.AssignRoleRequest true "Role"
// @Success     200 {object} models.RoleResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /admin/roles/{user_id} [put]
func (h *RolesHandler) AssignRole(c *gin.Context) {
	var req models.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	userID := c.Param("user_id")
	if err := h.roles.Assign(c.Request.Context(), userID, req.Role); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.RoleResponse{UserID: userID, Role: req.Role})
}
