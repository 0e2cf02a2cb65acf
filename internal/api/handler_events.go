package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ovenlog-backend/internal/metrics"
	"ovenlog-backend/internal/model"
	"ovenlog-backend/internal/tracker"
)

// eventResponse flattens an oven event with its derived timing fields.
type eventResponse struct {
	model.OvenEvent
	Open                 bool       `json:"open"`
	TimeRemainingSeconds int        `json:"timeRemainingSeconds"`
	BakeEnd              *time.Time `json:"bakeEnd,omitempty"`
}

func toEventResponses(events []model.OvenEvent, now time.Time) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp := eventResponse{
			OvenEvent:            e,
			Open:                 e.IsOpen(),
			TimeRemainingSeconds: int(e.TimeRemaining(now).Seconds()),
		}
		if e.IsOpen() {
			end := e.BakeEnd()
			resp.BakeEnd = &end
		}
		out = append(out, resp)
	}
	return out
}

// GetOpenEvents handles GET /api/events/open, oldest time-in first.
func (h *Handler) GetOpenEvents(c *gin.Context) {
	events, err := h.tracker.ListOpen(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve open events"})
		return
	}
	c.JSON(http.StatusOK, toEventResponses(events, time.Now().UTC()))
}

// GetRecentActivity handles GET /api/events/recent?hours=24.
func (h *Handler) GetRecentActivity(c *gin.Context) {
	hours := 24
	if param := c.Query("hours"); param != "" {
		parsed, err := strconv.Atoi(param)
		if err != nil || parsed <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid hours"})
			return
		}
		hours = parsed
	}

	events, err := h.tracker.RecentActivity(c.Request.Context(), hours)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve recent activity"})
		return
	}
	c.JSON(http.StatusOK, toEventResponses(events, time.Now().UTC()))
}

// GetTrakHistory handles GET /api/traks/{trak_id}/history, newest first.
func (h *Handler) GetTrakHistory(c *gin.Context) {
	trakID, err := strconv.ParseInt(c.Param("trak_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid trak ID"})
		return
	}

	events, err := h.tracker.History(c.Request.Context(), trakID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve trak history"})
		return
	}
	c.JSON(http.StatusOK, toEventResponses(events, time.Now().UTC()))
}

type checkInRequest struct {
	TrakID        int64      `json:"trakId" binding:"required"`
	BoxID         int64      `json:"boxId" binding:"required"`
	UserID        int64      `json:"userId" binding:"required"`
	Temperature   float64    `json:"temperature" binding:"required"`
	BakeHours     float64    `json:"bakeHours" binding:"required"`
	Quantity      int        `json:"quantity"`
	StartTime     *time.Time `json:"startTime"`
	ApplicationID *int64     `json:"applicationId"`
	Note          string     `json:"note"`
}

// PostCheckIn handles POST /api/events: open a new oven event.
func (h *Handler) PostCheckIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Quantity == 0 {
		req.Quantity = 1
	}
	start := time.Now().UTC()
	if req.StartTime != nil {
		start = *req.StartTime
	}

	event, err := h.tracker.CheckIn(c.Request.Context(), tracker.CheckInParams{
		TrakID:        req.TrakID,
		BoxID:         req.BoxID,
		UserID:        req.UserID,
		Temperature:   req.Temperature,
		BakeHours:     req.BakeHours,
		Quantity:      req.Quantity,
		StartTime:     start,
		ApplicationID: req.ApplicationID,
		Note:          req.Note,
	})
	if err != nil {
		status, payload := trackerErrorResponse(err)
		c.AbortWithStatusJSON(status, payload)
		return
	}
	metrics.CheckIns.Inc()
	c.JSON(http.StatusCreated, event)
}

type checkOutRequest struct {
	UserID int64 `json:"userId" binding:"required"`
}

// PostCheckOut handles POST /api/events/{event_id}/checkout. A second
// checkout of the same event reports closed=false, not an error.
func (h *Handler) PostCheckOut(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("event_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var req checkOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	closed, err := h.tracker.CheckOut(c.Request.Context(), eventID, req.UserID)
	if err != nil {
		status, payload := trackerErrorResponse(err)
		c.AbortWithStatusJSON(status, payload)
		return
	}
	if closed {
		metrics.CheckOuts.Inc()
	}
	c.JSON(http.StatusOK, gin.H{"eventId": eventID, "closed": closed})
}

// GetAvailableTraks handles GET /api/traks/available: traks with no open
// oven event.
func (h *Handler) GetAvailableTraks(c *gin.Context) {
	traks, err := h.store.ListAvailableTraks(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve traks"})
		return
	}
	if traks == nil {
		traks = []model.Trak{}
	}
	c.JSON(http.StatusOK, traks)
}
