package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/medcart/internal/domain/inventory"
	"github.com/Spok95/medcart/internal/domain/medication"
	"github.com/Spok95/medcart/internal/report"
)

func (a *api) listMedications(c *gin.Context) {
	meds, err := a.Medications.List(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, meds)
}

func (a *api) createMedication(c *gin.Context) {
	var req medication.Medication
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	created, err := a.Medications.Create(c.Request.Context(), req)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

type inventoryCreateRequest struct {
	MedicationID   string  `json:"medicationId" binding:"required"`
	BatchNumber    string  `json:"batchNumber" binding:"required"`
	Amount         float64 `json:"amount"`
	Unit           string  `json:"unit" binding:"required"`
	Location       string  `json:"location"`
	ExpirationDate string  `json:"expirationDate" binding:"required"`
	MinStock       float64 `json:"min_stock"`
}

func (a *api) listInventory(c *gin.Context) {
	batches, err := a.Inventory.List(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, batches)
}

func (a *api) createInventory(c *gin.Context) {
	var req inventoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	exp, err := time.Parse("2006-01-02", req.ExpirationDate)
	if err != nil {
		badRequest(c, err)
		return
	}
	created, err := a.Inventory.Create(c.Request.Context(), inventory.Batch{
		MedicationID:   req.MedicationID,
		BatchNumber:    req.BatchNumber,
		Amount:         req.Amount,
		Unit:           req.Unit,
		Location:       req.Location,
		ExpirationDate: exp,
		MinStock:       req.MinStock,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

// listInventoryByMedication: id здесь — идентификатор медикамента,
// ответ — список его партий (контракт исходного API).
func (a *api) listInventoryByMedication(c *gin.Context) {
	batches, err := a.Inventory.ListByMedication(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, batches)
}

func (a *api) patchInventoryAmount(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req struct {
		NewAmount float64 `json:"new_amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := a.Inventory.SetAmount(c.Request.Context(), id, req.NewAmount)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (a *api) deleteInventory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := a.Inventory.Delete(c.Request.Context(), id); err != nil {
		writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *api) deleteAllInventory(c *gin.Context) {
	n, err := a.Inventory.DeleteAll(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (a *api) exportInventory(c *gin.Context) {
	batches, err := a.Inventory.List(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	data, fileName, err := report.StockReport(batches)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
