package api

import (
	"context"
	"sync"

	"github.com/SherClockHolmes/webpush-go"

	"ovenlog-backend/internal/catalog"
	"ovenlog-backend/internal/directory"
	"ovenlog-backend/internal/scan"
	"ovenlog-backend/internal/session"
	"ovenlog-backend/internal/store"
	"ovenlog-backend/internal/tracker"
)

// Handler holds shared dependencies for API handlers. The session, framer,
// and dispatcher belong to the single operator station this daemon serves;
// mu serializes keystroke and action handling so scan events keep
// terminator order.
type Handler struct {
	store      store.Store
	tracker    *tracker.Tracker
	catalog    *catalog.Service
	directory  *directory.Directory
	session    *session.Session
	framer     *scan.Framer
	dispatcher *session.Dispatcher
	webpush    *webpush.Options

	mu sync.Mutex
	// Per-request scan plumbing, valid only while mu is held.
	scanCtx context.Context
	scanErr error
}

// NewHandler creates a new API handler.
func NewHandler(
	s store.Store,
	t *tracker.Tracker,
	cat *catalog.Service,
	dir *directory.Directory,
	sess *session.Session,
	framer *scan.Framer,
	disp *session.Dispatcher,
	webpushOptions *webpush.Options,
) *Handler {
	h := &Handler{
		store:      s,
		tracker:    t,
		catalog:    cat,
		directory:  dir,
		session:    sess,
		framer:     framer,
		dispatcher: disp,
		webpush:    webpushOptions,
	}
	framer.OnScan(h.handleScanEvent)
	return h
}

// handleScanEvent routes a completed frame into the dispatcher, keeping
// the first failure for the keystroke request that triggered it. Later
// frames of the same burst still dispatch; the floor expects a bad scan
// to never wedge the ones behind it.
func (h *Handler) handleScanEvent(event scan.Event) {
	ctx := h.scanCtx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := h.dispatcher.HandleScan(ctx, event); err != nil && h.scanErr == nil {
		h.scanErr = err
	}
}
