package session

import (
	"context"
	"errors"
	"log"

	"ovenlog-backend/internal/metrics"
	"ovenlog-backend/internal/scan"
	"ovenlog-backend/internal/store"
	"ovenlog-backend/internal/tracker"
)

// ErrNoUser is returned when an action barcode fires with no operator set.
var ErrNoUser = errors.New("session: no current user")

// ErrNotEligible is returned when an action barcode fires while the
// session's eligibility predicate says no.
var ErrNotEligible = errors.New("session: action not currently valid")

// ErrBoxNotReady is returned when an add targets a box still warming up or
// never powered on.
var ErrBoxNotReady = errors.New("session: box is not ready")

// Dispatcher routes classified scan events into session mutations and
// tracker operations. It is the action layer between the framer and the
// occupancy engine.
type Dispatcher struct {
	session *Session
	store   store.Store
	tracker *tracker.Tracker
}

// NewDispatcher wires a dispatcher over the session, store, and tracker.
func NewDispatcher(sess *Session, s store.Store, t *tracker.Tracker) *Dispatcher {
	return &Dispatcher{session: sess, store: s, tracker: t}
}

// RefreshReferenceSets repopulates the framer's classification sets from
// the catalog. New sets take effect on the next scan, not retroactively.
func (d *Dispatcher) RefreshReferenceSets(ctx context.Context, framer *scan.Framer) error {
	toolIDs, err := d.store.ListBoxToolIDs(ctx)
	if err != nil {
		return err
	}
	appBarcodes, err := d.store.ListApplicationBarcodes(ctx)
	if err != nil {
		return err
	}
	timeBarcodes, err := d.store.ListStandardTimeBarcodes(ctx)
	if err != nil {
		return err
	}
	framer.RegisterBoxIDs(toolIDs)
	framer.RegisterApplicationBarcodes(appBarcodes)
	framer.RegisterStandardTimeBarcodes(timeBarcodes)
	return nil
}

// HandleScan applies one classified scan event. Selection scans mutate the
// session; action scans run tracker operations when the session says they
// are eligible. Lookup misses on reference-classified barcodes are logged
// and ignored so a stale label never wedges the station.
func (d *Dispatcher) HandleScan(ctx context.Context, event scan.Event) error {
	metrics.ScansClassified.WithLabelValues(string(event.Type)).Inc()

	switch event.Type {
	case scan.TypeActionReset:
		d.session.Reset()
		return nil

	case scan.TypeActionOvenOn:
		return d.powerOn(ctx)

	case scan.TypeActionAdd:
		return d.addSelected(ctx)

	case scan.TypeActionRemove:
		return d.removeSelected(ctx)

	case scan.TypeBox:
		box, err := d.store.FindBoxByToolID(ctx, event.Barcode)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				log.Printf("scanned unknown box %q, ignoring", event.Barcode)
				return nil
			}
			return err
		}
		d.session.SelectBox(box)
		return nil

	case scan.TypeApplication:
		app, err := d.store.FindApplicationByBarcode(ctx, event.Barcode)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				log.Printf("scanned unknown application barcode %q, ignoring", event.Barcode)
				return nil
			}
			return err
		}
		d.session.SelectApplication(app)
		return nil

	case scan.TypeStandardTime:
		st, err := d.store.FindStandardTimeByBarcode(ctx, event.Barcode)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				log.Printf("scanned unknown duration barcode %q, ignoring", event.Barcode)
				return nil
			}
			return err
		}
		d.session.SetBakeHours(st.Hours)
		return nil

	case scan.TypeTrak:
		return d.selectTrak(ctx, event.Barcode)
	}
	return nil
}

// selectTrak toggles the scanned item: an item currently inside a box
// selects its open event for removal, an available item selects the trak
// for check-in. Unknown codes create the trak record on first scan.
func (d *Dispatcher) selectTrak(ctx context.Context, code string) error {
	trak, err := d.store.CreateOrGetTrak(ctx, code, "", "", nil)
	if err != nil {
		return err
	}
	open, err := d.store.FindOpenEventByTrak(ctx, trak.ID)
	if err != nil {
		return err
	}
	if open != nil {
		d.session.ToggleEvent(open.ID)
	} else {
		d.session.ToggleTrak(trak.ID)
	}
	return nil
}

func (d *Dispatcher) powerOn(ctx context.Context) error {
	userID := d.session.UserID()
	if userID == nil {
		return ErrNoUser
	}
	boxID := d.session.BoxID()
	if boxID == nil {
		return ErrNotEligible
	}
	_, err := d.tracker.RecordPowerOn(ctx, *boxID, *userID, d.session.StartTime())
	return err
}

// addSelected checks every selected trak into the selected box. Readiness
// is enforced here: blocking an add on warm-up is workflow policy, not a
// storage invariant, so CheckIn itself stays readiness-blind.
func (d *Dispatcher) addSelected(ctx context.Context) error {
	if !d.session.CanAdd() {
		return ErrNotEligible
	}
	boxID := *d.session.BoxID()

	ready, err := d.tracker.IsReady(ctx, boxID)
	if err != nil {
		return err
	}
	if !ready {
		return ErrBoxNotReady
	}

	var firstErr error
	for _, trakID := range d.session.TrakIDs() {
		_, err := d.tracker.CheckIn(ctx, tracker.CheckInParams{
			TrakID:        trakID,
			BoxID:         boxID,
			UserID:        *d.session.UserID(),
			Temperature:   d.session.Temperature(),
			BakeHours:     d.session.BakeHours(),
			Quantity:      d.session.Quantity(),
			StartTime:     d.session.StartTime(),
			ApplicationID: d.session.ApplicationID(),
			Note:          d.session.Note(),
		})
		if err != nil {
			log.Printf("check-in failed for trak %d: %v", trakID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		metrics.CheckIns.Inc()
	}
	d.session.ClearTrakSelection()
	return firstErr
}

func (d *Dispatcher) removeSelected(ctx context.Context) error {
	if !d.session.CanRemove() {
		return ErrNotEligible
	}
	userID := *d.session.UserID()

	var firstErr error
	for _, eventID := range d.session.EventIDs() {
		closed, err := d.tracker.CheckOut(ctx, eventID, userID)
		if err != nil {
			log.Printf("check-out failed for event %d: %v", eventID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if closed {
			metrics.CheckOuts.Inc()
		}
	}
	d.session.ClearEventSelection()
	return firstErr
}
