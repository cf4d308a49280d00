package http

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/vfsd/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/shell"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/vfs"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	store     *vfs.Store
	clipboard *vfs.Clipboard
	shell     *shell.Shell
	sessions  *session.Manager
	metrics   *monitoring.Metrics
}

// NewHandlers creates a new handler set. metrics may be nil.
func NewHandlers(sh *shell.Shell, sessions *session.Manager, metrics *monitoring.Metrics) *Handlers {
	return &Handlers{
		store:     sh.Store(),
		clipboard: sh.Clipboard(),
		shell:     sh,
		sessions:  sessions,
		metrics:   metrics,
	}
}

// Register mounts /health and the /api routes on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/health", h.Health)

	api := r.Group("/api")

	fs := api.Group("/fs")
	fs.GET("/tree", h.Tree)
	fs.GET("/item", h.GetItem)
	fs.POST("/items", h.CreateItem)
	fs.DELETE("/item", h.DeleteItem)
	fs.POST("/rename", h.RenameItem)
	fs.POST("/move", h.MoveItem)
	fs.POST("/copy", h.CopyItem)
	fs.PUT("/content", h.UpdateContent)
	fs.POST("/undo", h.Undo)
	fs.GET("/operations", h.Operations)

	clip := api.Group("/clipboard")
	clip.GET("", h.GetClipboard)
	clip.POST("/copy", h.ClipboardCopy)
	clip.POST("/cut", h.ClipboardCut)
	clip.POST("/paste", h.ClipboardPaste)
	clip.DELETE("", h.ClearClipboard)

	term := api.Group("/terminal/sessions")
	term.POST("", h.CreateSession)
	term.GET("", h.ListSessions)
	term.GET("/:id", h.GetSession)
	term.DELETE("/:id", h.KillSession)
	term.POST("/:id/exec", h.Exec)

	api.GET("/commands", h.ListCommands)
}

// Health reports service status with filesystem and session statistics
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":   "healthy",
		"service":  "vfsd",
		"fs":       h.store.Stats(),
		"sessions": h.sessions.Count(),
		"commands": h.shell.Registry().Stats(),
	}
	if h.metrics != nil {
		body["uptime"] = h.metrics.Uptime().String()
		body["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}

func errorBody(msg string) gin.H {
	return gin.H{"success": false, "error": msg}
}

// bind decodes the JSON body into req and runs its validation rules
func bind(c *gin.Context, req validation.Validatable) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body: "+err.Error()))
		return false
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return false
	}
	return true
}

// statusFor maps filesystem sentinel errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, vfs.ErrNotFound),
		errors.Is(err, vfs.ErrFileNotFound),
		errors.Is(err, vfs.ErrParentNotFound),
		errors.Is(err, vfs.ErrDestinationNotFound),
		errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, vfs.ErrNameInvalid),
		errors.Is(err, vfs.ErrNothingToUndo),
		errors.Is(err, vfs.ErrUndoUnsupported),
		errors.Is(err, vfs.ErrClipboardEmpty):
		return http.StatusConflict
	case errors.Is(err, session.ErrTooManySessions):
		return http.StatusTooManyRequests
	case errors.Is(err, session.ErrInvalidID):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

// respond writes a store result with okStatus or the mapped failure status
func respond(c *gin.Context, res vfs.Result, okStatus int) {
	if res.Success {
		c.JSON(okStatus, res)
		return
	}
	c.JSON(statusFor(res.Err()), res)
}
