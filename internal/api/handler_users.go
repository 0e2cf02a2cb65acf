package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetBoxSelections handles GET /api/users/{user_id}/boxes: the user's
// saved box subset. An empty list means the user sees every box.
func (h *Handler) GetBoxSelections(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	boxIDs, err := h.store.ListBoxSelections(c.Request.Context(), userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve box selections"})
		return
	}
	if boxIDs == nil {
		boxIDs = []int64{}
	}
	c.JSON(http.StatusOK, gin.H{"boxIds": boxIDs})
}

type putBoxSelectionsRequest struct {
	BoxIDs []int64 `json:"boxIds"`
}

// PutBoxSelections handles PUT /api/users/{user_id}/boxes, replacing the
// subset wholesale.
func (h *Handler) PutBoxSelections(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req putBoxSelectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.SaveBoxSelections(c.Request.Context(), userID, req.BoxIDs); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
