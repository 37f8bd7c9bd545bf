package handler

import (
	"fmt"
	"net/http"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/cloud"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SyncHandler struct {
	svc  service.SyncService
	auth cloud.Authorizer // nil when the provider needs no consent step
}

func NewSyncHandler(svc service.SyncService, provider cloud.Provider) *SyncHandler {
	h := &SyncHandler{svc: svc}
	if a, ok := provider.(cloud.Authorizer); ok && provider.Configured() {
		h.auth = a
	}
	return h
}

func (h *SyncHandler) Status(c *gin.Context) {
	st, err := h.svc.Status(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"configured":     st.Configured,
		"signed_in":      st.SignedIn,
		"account":        st.Account,
		"last_synced_at": st.LastSyncedAt,
		"online":         h.svc.IsOnline(c.Request.Context()),
	})
}

// AuthURL returns the consent page to open in a browser.
func (h *SyncHandler) AuthURL(c *gin.Context) {
	if h.auth == nil {
		fail(c, apierror.ErrSyncDisabled)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": h.auth.AuthURL(uuid.NewString())})
}

type authorizeRequest struct {
	Code string `json:"code" validate:"required"`
}

// Authorize stores the consent code's token, then signs in.
func (h *SyncHandler) Authorize(c *gin.Context) {
	if h.auth == nil {
		fail(c, apierror.ErrSyncDisabled)
		return
	}
	var req authorizeRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.auth.Exchange(c.Request.Context(), req.Code); err != nil {
		fail(c, fmt.Errorf("%w: %w", apierror.ErrSyncFailed, err))
		return
	}
	h.SignIn(c)
}

func (h *SyncHandler) SignIn(c *gin.Context) {
	account, err := h.svc.SignIn(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account})
}

func (h *SyncHandler) SignOut(c *gin.Context) {
	if err := h.svc.SignOut(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Sync always answers 200; the outcome is in the body so the settings screen
// can show the message as-is.
func (h *SyncHandler) Sync(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Sync(c.Request.Context()))
}

func (h *SyncHandler) Check(c *gin.Context) {
	remote, err := h.svc.CheckExistingBackup(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, remote.Info)
}

// Restore downloads the cloud backup and replaces local data with it.
func (h *SyncHandler) Restore(c *gin.Context) {
	remote, err := h.svc.CheckExistingBackup(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if !remote.Info.Exists {
		fail(c, fmt.Errorf("%w: no cloud backup to restore", apierror.ErrInvalidState))
		return
	}
	n, err := h.svc.RestoreFromBackup(c.Request.Context(), remote.Snapshot)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restored": true, "records": n, "backup_created_at": remote.Info.CreatedAt})
}
