package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// maxBackupUpload bounds an uploaded backup document.
const maxBackupUpload = 64 << 20

type BackupHandler struct{ svc service.BackupService }

func NewBackupHandler(svc service.BackupService) *BackupHandler { return &BackupHandler{svc: svc} }

func (h *BackupHandler) Info(c *gin.Context) {
	info, err := h.svc.GetBackupInfo(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Export saves a backup file on the shop machine; ?download=1 also streams it.
func (h *BackupHandler) Export(c *gin.Context) {
	resp, err := h.svc.ExportData(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if c.Query("download") == "1" {
		c.FileAttachment(resp.Path, filepath.Base(resp.Path))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Import replaces all data with the uploaded document: a multipart "file"
// field or a raw JSON body.
func (h *BackupHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBackupUpload)

	var picker service.FilePicker
	if fh, err := c.FormFile("file"); err == nil {
		picker = service.PickerFunc(func(context.Context) (io.ReadCloser, error) { return fh.Open() })
	} else {
		picker = service.ReaderPicker(c.Request.Body)
	}

	resp, err := h.svc.ImportData(c.Request.Context(), picker)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
