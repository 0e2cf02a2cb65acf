package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ovenlog-backend/internal/model"
	"ovenlog-backend/internal/tracker"
)

// boxStatusResponse is the flattened structure for the box list response.
type boxStatusResponse struct {
	model.Box
	Ready     bool `json:"ready"`
	OpenCount int  `json:"openCount"`
}

// GetBoxes handles GET /api/boxes: every box with its readiness and the
// number of traks currently inside. The user_id query narrows the list to
// that user's saved box subset; an empty subset means all boxes.
func (h *Handler) GetBoxes(c *gin.Context) {
	ctx := c.Request.Context()

	boxes, err := h.store.ListBoxes(ctx)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve boxes"})
		return
	}

	if userIDParam := c.Query("user_id"); userIDParam != "" {
		userID, err := strconv.ParseInt(userIDParam, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}
		selected, err := h.store.ListBoxSelections(ctx, userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve box selections"})
			return
		}
		if len(selected) > 0 {
			boxes = filterBoxes(boxes, selected)
		}
	}

	openEvents, err := h.store.QueryOpenEvents(ctx)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve open events"})
		return
	}
	openCounts := make(map[int64]int)
	for _, e := range openEvents {
		openCounts[e.BoxID]++
	}

	response := make([]boxStatusResponse, 0, len(boxes))
	for _, box := range boxes {
		ready, err := h.tracker.IsReady(ctx, box.ID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute readiness"})
			return
		}
		response = append(response, boxStatusResponse{
			Box:       box,
			Ready:     ready,
			OpenCount: openCounts[box.ID],
		})
	}
	c.JSON(http.StatusOK, response)
}

func filterBoxes(boxes []model.Box, ids []int64) []model.Box {
	keep := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	out := boxes[:0]
	for _, b := range boxes {
		if _, ok := keep[b.ID]; ok {
			out = append(out, b)
		}
	}
	return out
}

// GetBoxReady handles GET /api/boxes/{box_id}/ready.
func (h *Handler) GetBoxReady(c *gin.Context) {
	boxID, err := strconv.ParseInt(c.Param("box_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid box ID"})
		return
	}

	ready, err := h.tracker.IsReady(c.Request.Context(), boxID)
	if err != nil {
		status, payload := trackerErrorResponse(err)
		c.AbortWithStatusJSON(status, payload)
		return
	}
	c.JSON(http.StatusOK, gin.H{"boxId": boxID, "ready": ready})
}

type powerOnRequest struct {
	UserID            int64      `json:"userId" binding:"required"`
	IntendedStartTime *time.Time `json:"intendedStartTime"`
}

// PostPowerOn handles POST /api/boxes/{box_id}/power-on. Repeated posts
// append repeated power-on records; readiness uses only the latest.
func (h *Handler) PostPowerOn(c *gin.Context) {
	boxID, err := strconv.ParseInt(c.Param("box_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid box ID"})
		return
	}

	var req powerOnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	intended := time.Now().UTC()
	if req.IntendedStartTime != nil {
		intended = *req.IntendedStartTime
	}

	event, err := h.tracker.RecordPowerOn(c.Request.Context(), boxID, req.UserID, intended)
	if err != nil {
		status, payload := trackerErrorResponse(err)
		c.AbortWithStatusJSON(status, payload)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// trackerErrorResponse maps the tracker error taxonomy onto HTTP statuses.
func trackerErrorResponse(err error) (int, gin.H) {
	var verr *tracker.ValidationError
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		return http.StatusNotFound, gin.H{"error": err.Error()}
	case errors.Is(err, tracker.ErrConflict):
		return http.StatusConflict, gin.H{"error": err.Error()}
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, gin.H{"error": verr.Error()}
	default:
		return http.StatusInternalServerError, gin.H{"error": err.Error()}
	}
}
