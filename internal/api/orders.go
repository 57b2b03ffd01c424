package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/medcart/internal/apperr"
	"github.com/Spok95/medcart/internal/domain/order"
)

type orderCreateRequest struct {
	Name        string       `json:"name" binding:"required"`
	Date        string       `json:"date"`
	Medications []order.Line `json:"medications" binding:"required"`
	IsInternal  bool         `json:"isInternal"`
	IsRush      bool         `json:"isRush"`
}

func (a *api) listOrders(c *gin.Context) {
	orders, err := a.Orders.List(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (a *api) createOrder(c *gin.Context) {
	var req orderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			badRequest(c, err)
			return
		}
		date = parsed
	}
	created, err := a.Orders.Create(c.Request.Context(), order.Order{
		Name:        req.Name,
		Date:        date,
		Medications: req.Medications,
		IsInternal:  req.IsInternal,
		IsRush:      req.IsRush,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

func (a *api) getOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, err)
		return
	}
	o, err := a.Orders.GetByID(c.Request.Context(), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	if o == nil {
		writeErr(c, apperr.NotFound("Order", id))
		return
	}
	c.JSON(http.StatusOK, o)
}

func (a *api) deleteOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := a.Orders.Delete(c.Request.Context(), id); err != nil {
		writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
