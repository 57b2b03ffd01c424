package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/medcart/internal/domain/checklist"
)

func (a *api) processChecklist(c *gin.Context) {
	var items []checklist.Item
	if err := c.ShouldBindJSON(&items); err != nil {
		badRequest(c, err)
		return
	}
	out, err := a.Checklist.Process(c.Request.Context(), items)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (a *api) listChecklists(c *gin.Context) {
	names, err := a.Checklists.ListNames(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, names)
}

func (a *api) createChecklist(c *gin.Context) {
	var req struct {
		Name  string           `json:"name" binding:"required"`
		Items []checklist.Item `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	items, err := a.Checklists.Create(c.Request.Context(), req.Name, req.Items)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (a *api) getChecklist(c *gin.Context) {
	items, err := a.Checklists.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
