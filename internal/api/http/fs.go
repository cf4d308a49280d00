package http

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/vfsd/internal/vfs"
)

type createItemRequest struct {
	Kind       vfs.Kind `json:"kind"`
	Name       string   `json:"name"`
	ParentPath vfs.Path `json:"parent_path"`
	Content    string   `json:"content"`
}

func (r createItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Kind, validation.Required, validation.In(vfs.KindFile, vfs.KindFolder)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
	)
}

type renameRequest struct {
	Path    vfs.Path `json:"path"`
	NewName string   `json:"new_name"`
}

func (r renameRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path, validation.Required),
		validation.Field(&r.NewName, validation.Required, validation.Length(1, 255)),
	)
}

type transferRequest struct {
	From vfs.Path `json:"from"`
	To   vfs.Path `json:"to"`
}

func (r transferRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.From, validation.Required),
	)
}

type contentRequest struct {
	Path    vfs.Path `json:"path"`
	Content string   `json:"content"`
}

func (r contentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path, validation.Required),
	)
}

// queryPath reads ?path=/a/b as an id-path; absent means the root
func queryPath(c *gin.Context) vfs.Path {
	return vfs.ParsePath(c.Query("path"))
}

// Tree exports a subtree (default the whole tree) as json, yaml or toml
func (h *Handlers) Tree(c *gin.Context) {
	format := vfs.Format(c.DefaultQuery("format", string(vfs.FormatJSON)))
	switch format {
	case vfs.FormatJSON, vfs.FormatYAML, vfs.FormatTOML:
	default:
		c.JSON(http.StatusBadRequest, errorBody("unsupported format: "+string(format)))
		return
	}

	item := h.store.GetItemByPath(queryPath(c))
	if item == nil {
		c.JSON(http.StatusNotFound, errorBody(vfs.ErrNotFound.Error()))
		return
	}

	data, err := vfs.Encode(item, format)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	c.Data(http.StatusOK, format.ContentType(), data)
}

// GetItem returns the item at ?path= with its parent location
func (h *Handlers) GetItem(c *gin.Context) {
	path := queryPath(c)
	item := h.store.GetItemByPath(path)
	if item == nil {
		c.JSON(http.StatusNotFound, errorBody(vfs.ErrNotFound.Error()))
		return
	}

	body := gin.H{"success": true, "item": item, "path": path, "display_path": h.shell.DisplayPath(path)}
	if ref, ok := h.store.GetParentByPath(path); ok {
		body["parent_id"] = ref.Parent.ID
		body["index"] = ref.Index
	}
	c.JSON(http.StatusOK, body)
}

// CreateItem creates a file or folder
func (h *Handlers) CreateItem(c *gin.Context) {
	var req createItemRequest
	if !bind(c, &req) {
		return
	}
	respond(c, h.store.CreateItem(req.Kind, req.Name, req.ParentPath, req.Content), http.StatusCreated)
}

// DeleteItem removes the item at ?path=
func (h *Handlers) DeleteItem(c *gin.Context) {
	respond(c, h.store.DeleteItem(queryPath(c)), http.StatusOK)
}

// RenameItem changes an item's display name
func (h *Handlers) RenameItem(c *gin.Context) {
	var req renameRequest
	if !bind(c, &req) {
		return
	}
	respond(c, h.store.RenameItem(req.Path, req.NewName), http.StatusOK)
}

// MoveItem re-parents an item
func (h *Handlers) MoveItem(c *gin.Context) {
	var req transferRequest
	if !bind(c, &req) {
		return
	}
	respond(c, h.store.MoveItem(req.From, req.To), http.StatusOK)
}

// CopyItem duplicates a subtree
func (h *Handlers) CopyItem(c *gin.Context) {
	var req transferRequest
	if !bind(c, &req) {
		return
	}
	respond(c, h.store.CopyItem(req.From, req.To), http.StatusCreated)
}

// UpdateContent overwrites a file
func (h *Handlers) UpdateContent(c *gin.Context) {
	var req contentRequest
	if !bind(c, &req) {
		return
	}
	respond(c, h.store.UpdateFileContent(req.Path, req.Content), http.StatusOK)
}

// Undo reverses the last logged operation
func (h *Handlers) Undo(c *gin.Context) {
	respond(c, h.store.UndoLastOperation(), http.StatusOK)
}

// Operations lists the operation log, oldest first
func (h *Handlers) Operations(c *gin.Context) {
	ops := h.store.Operations()
	c.JSON(http.StatusOK, gin.H{"operations": ops, "count": len(ops)})
}
