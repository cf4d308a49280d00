package http

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/vfsd/internal/shell"
)

type execRequest struct {
	Input string `json:"input"`
}

func (r execRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Input, validation.Length(0, 4096)),
	)
}

// CreateSession starts a terminal session
func (h *Handlers) CreateSession(c *gin.Context) {
	info, err := h.sessions.Create()
	if err != nil {
		c.JSON(statusFor(err), errorBody(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, info)
}

// ListSessions lists terminal sessions
func (h *Handlers) ListSessions(c *gin.Context) {
	infos := h.sessions.List()
	c.JSON(http.StatusOK, gin.H{"sessions": infos, "count": len(infos)})
}

// GetSession returns a session and its state
func (h *Handlers) GetSession(c *gin.Context) {
	sessionID := c.Param("id")
	info, err := h.sessions.Get(sessionID)
	if err != nil {
		c.JSON(statusFor(err), errorBody(err.Error()))
		return
	}
	state, err := h.sessions.State(sessionID)
	if err != nil {
		c.JSON(statusFor(err), errorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": info, "state": state})
}

// KillSession closes a session
func (h *Handlers) KillSession(c *gin.Context) {
	if err := h.sessions.Kill(c.Param("id")); err != nil {
		c.JSON(statusFor(err), errorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Exec runs one input line in a session
func (h *Handlers) Exec(c *gin.Context) {
	var req execRequest
	if !bind(c, &req) {
		return
	}
	exec, err := h.sessions.Execute(c.Request.Context(), c.Param("id"), req.Input)
	if err != nil {
		c.JSON(statusFor(err), errorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, exec)
}

// ListCommands lists built-in commands grouped by category
func (h *Handlers) ListCommands(c *gin.Context) {
	grouped := make(map[shell.Category][]shell.Command, len(shell.Categories))
	for _, cat := range shell.Categories {
		grouped[cat] = h.shell.Registry().List(&cat)
	}
	c.JSON(http.StatusOK, gin.H{"commands": grouped, "stats": h.shell.Registry().Stats()})
}
