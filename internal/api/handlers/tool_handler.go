package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/tools"
)

type ToolHandler struct {
	dispatcher *tools.Dispatcher
}

func NewToolHandler(dispatcher *tools.Dispatcher) *ToolHandler {
	return &ToolHandler{dispatcher: dispatcher}
}

// ListTools returns the tool descriptors
func (h *ToolHandler) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": h.dispatcher.Descriptors()})
}

// CallTool invokes the named tool with the JSON object in the request body
func (h *ToolHandler) CallTool(c *gin.Context) {
	args := map[string]any{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&args); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "arguments must be a JSON object"})
			return
		}
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(), c.Param("name"), args)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
