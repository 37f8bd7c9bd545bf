package handler

import (
	"net/http"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// ProfileHandler edits the shop details printed on receipts.
type ProfileHandler struct{ svc service.ReceiptService }

func NewProfileHandler(svc service.ReceiptService) *ProfileHandler { return &ProfileHandler{svc: svc} }

func (h *ProfileHandler) Get(c *gin.Context) {
	p, err := h.svc.Profile(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) Put(c *gin.Context) {
	var req dto.StoreProfile
	if !bindJSON(c, &req) {
		return
	}
	if err := h.svc.SetProfile(c.Request.Context(), req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}
