package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ovenlog-backend/internal/session"
)

// sessionResponse is the operator station's current selection state.
type sessionResponse struct {
	UserID        *int64    `json:"userId"`
	TrakIDs       []int64   `json:"trakIds"`
	EventIDs      []int64   `json:"eventIds"`
	BoxID         *int64    `json:"boxId"`
	ApplicationID *int64    `json:"applicationId"`
	Temperature   float64   `json:"temperature"`
	BakeHours     float64   `json:"bakeHours"`
	Quantity      int       `json:"quantity"`
	StartTime     time.Time `json:"startTime"`
	Note          string    `json:"note"`
	ScanMode      bool      `json:"scanMode"`
	CanAdd        bool      `json:"canAdd"`
	CanRemove     bool      `json:"canRemove"`
}

func (h *Handler) sessionState() sessionResponse {
	return sessionResponse{
		UserID:        h.session.UserID(),
		TrakIDs:       h.session.TrakIDs(),
		EventIDs:      h.session.EventIDs(),
		BoxID:         h.session.BoxID(),
		ApplicationID: h.session.ApplicationID(),
		Temperature:   h.session.Temperature(),
		BakeHours:     h.session.BakeHours(),
		Quantity:      h.session.Quantity(),
		StartTime:     h.session.StartTime(),
		Note:          h.session.Note(),
		ScanMode:      h.framer.ScanMode(),
		CanAdd:        h.session.CanAdd(),
		CanRemove:     h.session.CanRemove(),
	}
}

// GetSession handles GET /api/session.
func (h *Handler) GetSession(c *gin.Context) {
	h.mu.Lock()
	state := h.sessionState()
	h.mu.Unlock()
	c.JSON(http.StatusOK, state)
}

type sessionKeysRequest struct {
	Keys []string `json:"keys" binding:"required"`
}

// PostSessionKeys handles POST /api/session/keys: feed raw key symbols
// into the scan framer. Completed frames dispatch synchronously, so the
// response already reflects any selection or action the scans triggered.
func (h *Handler) PostSessionKeys(c *gin.Context) {
	var req sessionKeysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.scanErr = nil
	h.scanCtx = c.Request.Context()
	for _, key := range req.Keys {
		h.framer.HandleKey(key)
	}

	if h.scanErr != nil {
		status, payload := scanErrorResponse(h.scanErr)
		payload["session"] = h.sessionState()
		c.JSON(status, payload)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": h.sessionState()})
}

func scanErrorResponse(err error) (int, gin.H) {
	switch {
	case errors.Is(err, session.ErrNoUser), errors.Is(err, session.ErrNotEligible):
		return http.StatusConflict, gin.H{"error": err.Error()}
	case errors.Is(err, session.ErrBoxNotReady):
		return http.StatusConflict, gin.H{"error": err.Error()}
	default:
		return http.StatusInternalServerError, gin.H{"error": err.Error()}
	}
}

type sessionModeRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// PostSessionMode handles POST /api/session/mode: toggle scan handling.
// Flipping the mode always clears the key buffer.
func (h *Handler) PostSessionMode(c *gin.Context) {
	var req sessionModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	h.framer.SetScanMode(*req.Enabled)
	h.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"scanMode": *req.Enabled})
}

type sessionUserRequest struct {
	Login string `json:"login"`
	Badge string `json:"badge"`
}

// PostSessionUser handles POST /api/session/user: resolve an operator by
// login (with alias fallback) or badge and set them on the session.
func (h *Handler) PostSessionUser(c *gin.Context) {
	var req sessionUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Login == "" && req.Badge == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "login or badge is required"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.directory.ResolveByLogin(ctx, req.Login)
	if err == nil && user == nil && req.Badge != "" {
		user, err = h.directory.ResolveByBadge(ctx, req.Badge)
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	h.mu.Lock()
	h.session.SetUser(user)
	h.mu.Unlock()
	c.JSON(http.StatusOK, user)
}
