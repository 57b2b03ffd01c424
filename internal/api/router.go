package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/medcart/internal/domain/cart"
	"github.com/Spok95/medcart/internal/domain/checklist"
	"github.com/Spok95/medcart/internal/domain/inventory"
	"github.com/Spok95/medcart/internal/domain/medication"
	"github.com/Spok95/medcart/internal/domain/order"
	"github.com/Spok95/medcart/internal/domain/reservation"
	"github.com/Spok95/medcart/internal/infra/metrics"
)

type Deps struct {
	Medications  *medication.Repo
	Inventory    *inventory.Repo
	Carts        *cart.Repo
	Orders       *order.Repo
	Reservations *reservation.Service
	Checklist    *checklist.Service
	Checklists   *checklist.Repo
	Log          *slog.Logger
}

type api struct{ Deps }

// Register навешивает REST-поверхность на /api.
func Register(r *gin.Engine, deps Deps) {
	a := &api{deps}
	g := r.Group("/api")

	g.GET("/medications", a.listMedications)
	g.POST("/medications", a.createMedication)

	g.GET("/inventory", a.listInventory)
	g.POST("/inventory", a.createInventory)
	g.DELETE("/inventory", a.deleteAllInventory)
	g.GET("/inventory/export", a.exportInventory)
	g.GET("/inventory/:id", a.listInventoryByMedication)
	g.PATCH("/inventory/:id", a.patchInventoryAmount)
	g.DELETE("/inventory/:id", a.deleteInventory)

	g.GET("/carts", a.listCarts)
	g.POST("/carts", a.createCart)
	g.GET("/carts/:id/items", a.listCartItems)
	g.PATCH("/carts/:id/status", a.patchCartStatus)
	g.DELETE("/carts/:id", a.deleteCart)

	g.GET("/cart-items", a.listAllCartItems)
	g.GET("/cart-items/expiring", a.listExpiringItems)
	g.POST("/cart-items/add", a.addCartItem)
	g.POST("/cart-items/add-bulk", a.addCartItemsBulk)
	g.DELETE("/cart-items/:id", a.removeCartItem)

	g.POST("/checklists/process", a.processChecklist)
	g.GET("/checklists", a.listChecklists)
	g.POST("/checklists", a.createChecklist)
	g.GET("/checklists/:name", a.getChecklist)

	g.GET("/orders", a.listOrders)
	g.POST("/orders", a.createOrder)
	g.GET("/orders/:id", a.getOrder)
	g.DELETE("/orders/:id", a.deleteOrder)

	g.POST("/notifications/workflow-event", a.workflowEvent)
}

// workflowEvent принимает события прогресса от моста; сам fan-out
// (WebSocket и т.п.) — внешний коллаборатор, здесь только лог и счётчик.
func (a *api) workflowEvent(c *gin.Context) {
	var req struct {
		EventType string `json:"event_type" binding:"required"`
		Message   string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	metrics.WorkflowEvents.Inc()
	a.Log.Info("workflow event", "type", req.EventType, "msg", req.Message)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
