package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"kbr-silks-backend/internal/errmsg"
	"kbr-silks-backend/internal/models"
	"kbr-silks-backend/internal/services"
)

// respondError writes a service error with the status its category maps to.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := services.StatusCode(err)

	var ve *services.ValidationError
	if errors.As(err, &ve) {
		c.JSON(status, models.ErrorResponse{Error: "validation failed", Fields: ve.Fields})
		return
	}

	var se *services.Error
	if errors.As(err, &se) {
		c.JSON(status, models.ErrorResponse{Error: string(se.Category), Message: se.Message})
		return
	}

	c.JSON(status, models.ErrorResponse{Error: string(errmsg.CategoryGeneric), Message: errmsg.Translate(err)})
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid " + param})
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, message string, err error) {
	resp := models.ErrorResponse{Error: message}
	if err != nil {
		resp.Message = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}
