package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/medcart/internal/domain/cart"
	"github.com/Spok95/medcart/internal/domain/reservation"
)

type cartCreateRequest struct {
	Status          cart.Status `json:"status" binding:"required"`
	PatientID       string      `json:"patientId" binding:"required"`
	Operation       string      `json:"operation" binding:"required"`
	OperationDate   string      `json:"operationDate" binding:"required"`
	AnaesthesiaType string      `json:"anaesthesiaType" binding:"required"`
	RoomNumber      string      `json:"roomNumber" binding:"required"`
}

func (a *api) listCarts(c *gin.Context) {
	carts, err := a.Carts.List(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, carts)
}

func (a *api) createCart(c *gin.Context) {
	var req cartCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	opDate, err := time.Parse("2006-01-02", req.OperationDate)
	if err != nil {
		badRequest(c, err)
		return
	}
	created, err := a.Carts.Create(c.Request.Context(), cart.Cart{
		Status:          req.Status,
		PatientID:       req.PatientID,
		Operation:       req.Operation,
		OperationDate:   opDate,
		AnaesthesiaType: req.AnaesthesiaType,
		RoomNumber:      req.RoomNumber,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

func (a *api) patchCartStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req struct {
		NewStatus cart.Status `json:"new_status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := a.Carts.SetStatus(c.Request.Context(), id, req.NewStatus)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// deleteCart каскадно возвращает все позиции на склад; атомарность — на
// координаторе резервирования.
func (a *api) deleteCart(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := a.Reservations.DeleteCart(c.Request.Context(), id); err != nil {
		writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *api) listCartItems(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, err)
		return
	}
	items, err := a.Carts.ListItemsByCart(c.Request.Context(), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (a *api) listAllCartItems(c *gin.Context) {
	items, err := a.Carts.ListItems(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (a *api) listExpiringItems(c *gin.Context) {
	days := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		days = parsed
	}
	items, err := a.Carts.ListExpiringItems(c.Request.Context(), days)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (a *api) addCartItem(c *gin.Context) {
	var req reservation.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := a.Reservations.Reserve(c.Request.Context(), req)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (a *api) addCartItemsBulk(c *gin.Context) {
	var reqs []reservation.Request
	if err := c.ShouldBindJSON(&reqs); err != nil {
		badRequest(c, err)
		return
	}
	items, err := a.Reservations.ReserveBulk(c.Request.Context(), reqs)
	if err != nil {
		writeErr(c, err)
		return
	}
	if items == nil {
		items = []cart.Item{}
	}
	c.JSON(http.StatusOK, items)
}

func (a *api) removeCartItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := a.Reservations.Release(c.Request.Context(), id); err != nil {
		writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
