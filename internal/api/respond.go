package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/medcart/internal/apperr"
)

// writeErr переводит доменную ошибку в HTTP-статус; тело в стиле
// {"detail": ...}, как его ждут существующие клиенты.
func writeErr(c *gin.Context, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch e.Kind {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindInsufficientStock, apperr.KindDecoding:
		status = http.StatusBadRequest
	case apperr.KindValidation:
		status = http.StatusUnprocessableEntity
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindExternal:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"detail": e.Message})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
}
