package http

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/vfsd/internal/vfs"
)

type clipboardRequest struct {
	Path vfs.Path `json:"path"`
}

func (r clipboardRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path, validation.Required),
	)
}

type pasteRequest struct {
	To vfs.Path `json:"to"`
}

func (r pasteRequest) Validate() error { return nil }

// GetClipboard returns the pending entry, if any
func (h *Handlers) GetClipboard(c *gin.Context) {
	entry, ok := h.clipboard.Entry()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"empty": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"empty": false, "entry": entry})
}

// ClipboardCopy remembers a path for copy-paste
func (h *Handlers) ClipboardCopy(c *gin.Context) {
	var req clipboardRequest
	if !bind(c, &req) {
		return
	}
	respond(c, h.clipboard.Copy(req.Path), http.StatusOK)
}

// ClipboardCut remembers a path for move-paste
func (h *Handlers) ClipboardCut(c *gin.Context) {
	var req clipboardRequest
	if !bind(c, &req) {
		return
	}
	respond(c, h.clipboard.Cut(req.Path), http.StatusOK)
}

// ClipboardPaste pastes into the folder at "to"
func (h *Handlers) ClipboardPaste(c *gin.Context) {
	var req pasteRequest
	if !bind(c, &req) {
		return
	}
	respond(c, h.clipboard.Paste(req.To), http.StatusOK)
}

// ClearClipboard drops the pending entry
func (h *Handlers) ClearClipboard(c *gin.Context) {
	h.clipboard.Clear()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
