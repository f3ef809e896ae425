package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"kbr-silks-backend/internal/config"
	"kbr-silks-backend/internal/models"
)

// HealthHandler godoc
// @Summary     Health check
// @Description Returns the health status of the API
// @Tags        health
// @Accept      json
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Router      /health [get]
func HealthHandler(c *gin.Context) {
	response := models.HealthResponse{
		Status: "ok",
	}
	c.JSON(http.StatusOK, response)
}

// ContactHandler godoc
// @Summary     Business contact details
// @Description Phone numbers and the WhatsApp deep link shown on the storefront
// @Tags        storefront
// @Produce     json
// @Success     200 {object} models.ContactResponse
// @Router      /contact [get]
func ContactHandler(cfg *config.Config) gin.HandlerFunc {
	response := models.ContactResponse{
		Phone:           cfg.BusinessPhone,
		PhoneDisplay:    cfg.BusinessPhoneDisplay,
		AltPhone:        cfg.BusinessPhoneAlt,
		AltPhoneDisplay: cfg.BusinessPhoneAltDisplay,
		WhatsAppLink:    cfg.WhatsAppLink(),
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, response)
	}
}
