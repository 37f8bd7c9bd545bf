package handler

import (
	"net/http"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Status tells the lock screen whether a PIN has been set yet.
func (h *AuthHandler) Status(c *gin.Context) {
	has, err := h.svc.HasPIN(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"has_pin": has})
}

func (h *AuthHandler) Unlock(c *gin.Context) {
	var req dto.UnlockRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Unlock(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetPIN sets the first PIN or changes it; a change needs current_pin.
func (h *AuthHandler) SetPIN(c *gin.Context) {
	var req dto.SetPinRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.svc.SetPIN(c.Request.Context(), req); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
