package handler

import (
	"net/http"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type CustomersHandler struct {
	svc    service.CustomerService
	credit service.CreditService
	loc    *time.Location
}

func NewCustomersHandler(svc service.CustomerService, credit service.CreditService, loc *time.Location) *CustomersHandler {
	return &CustomersHandler{svc: svc, credit: credit, loc: loc}
}

func (h *CustomersHandler) Create(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	cust, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	h.respond(c, http.StatusCreated, cust.ID)
}

func (h *CustomersHandler) List(c *gin.Context) {
	var filter dto.CustomerFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CustomersHandler) Get(c *gin.Context) {
	h.respond(c, http.StatusOK, c.Param("id"))
}

func (h *CustomersHandler) Update(c *gin.Context) {
	var req dto.UpdateCustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	cust, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, cust.ID)
}

func (h *CustomersHandler) Deactivate(c *gin.Context) {
	if err := h.svc.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CustomersHandler) Reactivate(c *gin.Context) {
	if err := h.svc.Reactivate(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// respond writes the customer with its outstanding balance.
func (h *CustomersHandler) respond(c *gin.Context, status int, id string) {
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(status, resp)
}

func (h *CustomersHandler) Ledger(c *gin.Context) {
	id := c.Param("id")
	entries, err := h.credit.Ledger(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	outstanding, err := h.credit.GetOutstandingCredit(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	resp := dto.LedgerResponse{
		CustomerID:  id,
		Outstanding: outstanding,
		Entries:     make([]dto.CreditEntryResponse, len(entries)),
	}
	for i := range entries {
		resp.Entries[i] = service.CreditEntryToResponse(&entries[i], h.loc)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CustomersHandler) AddPayment(c *gin.Context) {
	var req dto.CreditPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.credit.AddCreditPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.CreditEntryToResponse(e, h.loc))
}
