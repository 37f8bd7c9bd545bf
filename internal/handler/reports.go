package handler

import (
	"net/http"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct {
	svc service.ReportService
	loc *time.Location
}

func NewReportsHandler(svc service.ReportService, loc *time.Location) *ReportsHandler {
	return &ReportsHandler{svc: svc, loc: loc}
}

func (h *ReportsHandler) rangeOf(c *gin.Context) (time.Time, time.Time, bool) {
	var r dto.ReportRange
	if !bindQuery(c, &r) {
		return time.Time{}, time.Time{}, false
	}
	from, to, err := service.DayTimes(r.From, r.To, h.loc)
	if err != nil {
		fail(c, err)
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func (h *ReportsHandler) Sales(c *gin.Context) {
	from, to, ok := h.rangeOf(c)
	if !ok {
		return
	}
	rep, err := h.svc.SalesReport(c.Request.Context(), from, to)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *ReportsHandler) Credit(c *gin.Context) {
	rep, err := h.svc.CreditReport(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *ReportsHandler) Inventory(c *gin.Context) {
	rep, err := h.svc.InventoryReport(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *ReportsHandler) Products(c *gin.Context) {
	from, to, ok := h.rangeOf(c)
	if !ok {
		return
	}
	rep, err := h.svc.ProductPerformance(c.Request.Context(), from, to)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}
