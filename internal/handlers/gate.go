package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"kbr-silks-backend/internal/admingate"
	"kbr-silks-backend/internal/config"
	"kbr-silks-backend/internal/middleware"
	"kbr-silks-backend/internal/models"
)

const sessionUnavailableMessage = "Could not remember your verification. Please enable cookies and try again."

type GateHandler struct {
	cfg *config.Config
}

func NewGateHandler(cfg *config.Config) *GateHandler {
	return &GateHandler{cfg: cfg}
}

func gateResponse(g *admingate.Gate) models.GateResponse {
	state := g.State()
	return models.GateResponse{State: string(state), Granted: state != admingate.StateLocked}
}

// save writes the session cookie. A failed save leaves the browser locked,
// which is reported rather than hidden.
func save(c *gin.Context) bool {
	if err := middleware.SaveSession(c); err != nil {
		slog.WarnContext(c.Request.Context(), "failed to save admin session", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "session unavailable",
			Message: sessionUnavailableMessage,
		})
		return false
	}
	return true
}

// GateStatus godoc
// @Summary     Admin gate state
// @Tags        gate
// @Produce     json
// @Success     200 {object} models.GateResponse
// @Router      /admin/gate [get]
func (h *GateHandler) GateStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gateResponse(middleware.GateFrom(c)))
}

// Verify godoc
// @Summary     Verify owner access
// @Description Checks an owner phone number (any formatting, optional +91) or the admin password
// @Tags        gate
// @Accept      json
// @Produce     json
// @Param       request body models.GateRequest true "Phone number or password"
// @Success     200 {object} models.GateResponse
// @Failure     403 {object} models.GateResponse
// @Router      /admin/gate [post]
func (h *GateHandler) Verify(c *gin.Context) {
	var req models.GateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	gate := middleware.GateFrom(c)
	result := gate.Verify(req.Candidate)
	if !result.Granted {
		c.JSON(http.StatusForbidden, models.GateResponse{State: string(result.State), Message: result.Message})
		return
	}
	if err := middleware.SaveSession(c); err != nil {
		// The check passed but nothing persists, so the browser stays locked.
		slog.WarnContext(c.Request.Context(), "failed to save admin session", "error", err)
		c.JSON(http.StatusOK, models.GateResponse{
			State:   string(admingate.StateLocked),
			Granted: true,
			Message: sessionUnavailableMessage,
		})
		return
	}
	c.JSON(http.StatusOK, models.GateResponse{State: string(result.State), Granted: true})
}

// SignIn godoc
// @Summary     Complete platform sign-in
// @Description Records the Supabase identity for a locally verified session
// @Tags        gate
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.GateResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /admin/gate/signin [post]
func (h *GateHandler) SignIn(c *gin.Context) {
	token, err := middleware.BearerToken(c.GetHeader("Authorization"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: err.Error()})
		return
	}
	subject, err := middleware.ParseSubject(h.cfg.SupabaseJWTSecret, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid token", Message: err.Error()})
		return
	}

	gate := middleware.GateFrom(c)
	if err := gate.CompleteSignIn(subject); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, admingate.ErrNotVerified) {
			status = http.StatusForbidden
		}
		c.JSON(status, models.ErrorResponse{Error: "sign-in not allowed", Message: err.Error()})
		return
	}
	if !save(c) {
		return
	}
	c.JSON(http.StatusOK, gateResponse(gate))
}

// AbandonSignIn godoc
// @Summary     Abandon platform sign-in
// @Description Backing out of sign-in locks the gate again
// @Tags        gate
// @Produce     json
// @Success     200 {object} models.GateResponse
// @Router      /admin/gate/signin [delete]
func (h *GateHandler) AbandonSignIn(c *gin.Context) {
	gate := middleware.GateFrom(c)
	gate.AbandonSignIn()
	if !save(c) {
		return
	}
	c.JSON(http.StatusOK, gateResponse(gate))
}

// Logout godoc
// @Summary     Log out of the admin area
// @Tags        gate
// @Produce     json
// @Success     200 {object} models.GateResponse
// @Router      /admin/logout [post]
func (h *GateHandler) Logout(c *gin.Context) {
	gate := middleware.GateFrom(c)
	gate.Clear()
	if !save(c) {
		return
	}
	c.JSON(http.StatusOK, gateResponse(gate))
}
