// Package scan reassembles a barcode scanner's keystroke stream into
// classified scan events. A scanner emits a burst of key symbols faster
// than a human types, closed by a Tab or Enter.
package scan

import (
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultInterKeyTimeout bounds the gap between two keys of one scan.
// A longer pause discards the partial buffer as an abandoned scan.
const DefaultInterKeyTimeout = 100 * time.Millisecond

// Terminator key names.
const (
	KeyTab   = "Tab"
	KeyEnter = "Enter"
)

// BarcodeType classifies a completed scan frame.
type BarcodeType string

const (
	TypeTrak         BarcodeType = "trak"
	TypeBox          BarcodeType = "box"
	TypeApplication  BarcodeType = "application"
	TypeStandardTime BarcodeType = "standard_time"
	TypeActionReset  BarcodeType = "action_reset"
	TypeActionOvenOn BarcodeType = "action_oven_on"
	TypeActionAdd    BarcodeType = "action_add"
	TypeActionRemove BarcodeType = "action_remove"
)

// Event is one completed, classified scan frame.
type Event struct {
	Barcode string
	Type    BarcodeType
}

// Framer buffers key symbols into frames and classifies them against three
// replaceable reference sets. It is private to one operator session and is
// not safe for concurrent use beyond the set-replacement methods.
type Framer struct {
	clock   clockwork.Clock
	timeout time.Duration

	enabled     bool
	buffer      strings.Builder
	lastKeyTime time.Time

	mu               sync.RWMutex
	knownBoxIDs      map[string]struct{}
	knownAppBarcodes map[string]struct{}
	knownTimeCodes   map[string]struct{}

	onScan        func(Event)
	onModeChanged func(enabled bool)
}

// Option configures a Framer.
type Option func(*Framer)

// WithTimeout overrides the inter-key timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Framer) { f.timeout = d }
}

// WithModeChanged registers a callback fired on every scan-mode toggle.
func WithModeChanged(fn func(enabled bool)) Option {
	return func(f *Framer) { f.onModeChanged = fn }
}

// NewFramer creates a framer. Completed scans are delivered to the OnScan
// callback synchronously, in terminator order. Scan mode starts enabled.
func NewFramer(clock clockwork.Clock, opts ...Option) *Framer {
	f := &Framer{
		clock:            clock,
		timeout:          DefaultInterKeyTimeout,
		enabled:          true,
		knownBoxIDs:      map[string]struct{}{},
		knownAppBarcodes: map[string]struct{}{},
		knownTimeCodes:   map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// OnScan registers the callback receiving completed, classified frames.
func (f *Framer) OnScan(fn func(Event)) {
	f.onScan = fn
}

// ScanMode reports whether keys are currently being consumed.
func (f *Framer) ScanMode() bool {
	return f.enabled
}

// SetScanMode toggles scan handling. The buffer is always cleared so a mode
// flip never leaks a partial frame into the next scan.
func (f *Framer) SetScanMode(enabled bool) {
	f.enabled = enabled
	f.buffer.Reset()
	if f.onModeChanged != nil {
		f.onModeChanged(enabled)
	}
}

// RegisterBoxIDs replaces the known equipment identifier set.
func (f *Framer) RegisterBoxIDs(ids []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.knownBoxIDs = toSet(ids)
}

// RegisterApplicationBarcodes replaces the known recipe barcode set.
func (f *Framer) RegisterApplicationBarcodes(barcodes []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.knownAppBarcodes = toSet(barcodes)
}

// RegisterStandardTimeBarcodes replaces the known duration barcode set.
func (f *Framer) RegisterStandardTimeBarcodes(barcodes []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.knownTimeCodes = toSet(barcodes)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		set[strings.ToUpper(v)] = struct{}{}
	}
	return set
}

// HandleKey processes one key symbol. Terminators close the frame and emit
// a classified event; single printable characters accumulate; anything else
// is ignored.
func (f *Framer) HandleKey(key string) {
	if !f.enabled {
		return
	}

	now := f.clock.Now()
	if now.Sub(f.lastKeyTime) > f.timeout && f.buffer.Len() > 0 {
		// The previous scan never finished; drop it.
		f.buffer.Reset()
	}
	f.lastKeyTime = now

	if key == KeyTab || key == KeyEnter {
		if f.buffer.Len() > 0 {
			barcode := f.buffer.String()
			f.buffer.Reset()
			if f.onScan != nil {
				f.onScan(Event{Barcode: barcode, Type: f.classify(barcode)})
			}
		}
		return
	}

	if len(key) == 1 {
		f.buffer.WriteString(key)
	}
}

// classify resolves a barcode against the action keywords first, then the
// reference sets, then the trak prefix. Unmatched scans default to trak,
// the most frequent scan type on the floor.
func (f *Framer) classify(barcode string) BarcodeType {
	upper := strings.ToUpper(barcode)

	switch {
	case strings.Contains(upper, "RESET"):
		return TypeActionReset
	case strings.Contains(upper, "OVENON"):
		return TypeActionOvenOn
	case strings.Contains(upper, "ADD"):
		return TypeActionAdd
	case strings.Contains(upper, "REMOVE"):
		return TypeActionRemove
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if _, ok := f.knownBoxIDs[upper]; ok {
		return TypeBox
	}
	if _, ok := f.knownAppBarcodes[upper]; ok {
		return TypeApplication
	}
	if _, ok := f.knownTimeCodes[upper]; ok {
		return TypeStandardTime
	}

	// TRK/TRAK prefixed codes and anything else unmatched read as traks.
	return TypeTrak
}
