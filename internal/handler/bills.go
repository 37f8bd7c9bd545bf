package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/infra"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type BillsHandler struct {
	svc      service.BillService
	receipts service.ReceiptService
	loc      *time.Location
}

func NewBillsHandler(svc service.BillService, receipts service.ReceiptService, loc *time.Location) *BillsHandler {
	return &BillsHandler{svc: svc, receipts: receipts, loc: loc}
}

func (h *BillsHandler) Create(c *gin.Context) {
	var req dto.CreateBillRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.svc.CreateBill(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.BillToResponse(&d.Bill, d.Items, h.loc))
}

func (h *BillsHandler) List(c *gin.Context) {
	var filter dto.BillFilter
	if !bindQuery(c, &filter) {
		return
	}
	bills, err := h.svc.ListBills(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]*dto.BillResponse, len(bills))
	for i := range bills {
		out[i] = service.BillToResponse(&bills[i], nil, h.loc)
	}
	c.JSON(http.StatusOK, out)
}

func (h *BillsHandler) Get(c *gin.Context) {
	d, err := h.svc.GetBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, service.BillToResponse(&d.Bill, d.Items, h.loc))
}

func (h *BillsHandler) Items(c *gin.Context) {
	items, err := h.svc.GetBillItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]dto.BillItemResponse, len(items))
	for i, it := range items {
		out[i] = dto.BillItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			LineTotal:   it.LineTotal,
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h *BillsHandler) Cancel(c *gin.Context) {
	b, err := h.svc.CancelBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, service.BillToResponse(b, nil, h.loc))
}

// Receipt returns the thermal-printer text; ?width= sets the column count.
func (h *BillsHandler) Receipt(c *gin.Context) {
	width, err := strconv.Atoi(c.DefaultQuery("width", strconv.Itoa(infra.DefaultReceiptWidth)))
	if err != nil || width < 24 || width > 64 {
		fail(c, dto.Invalid("width", "min=24,max=64"))
		return
	}
	r, err := h.receipts.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.String(http.StatusOK, r.Text(width))
}

func (h *BillsHandler) ReceiptPDF(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.receipts.WritePDF(c.Request.Context(), c.Param("id"), &buf); err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="receipt_%s.pdf"`, c.Param("id")))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// AllocateNumber reserves the next bill number, e.g. for a paper bill book.
func (h *BillsHandler) AllocateNumber(c *gin.Context) {
	n, err := h.svc.GenerateBillNumber(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"bill_number": n})
}
